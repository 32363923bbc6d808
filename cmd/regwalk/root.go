package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regwalk/internal/config"
	"github.com/joshuapare/regwalk/internal/logger"
	"github.com/joshuapare/regwalk/internal/printer"
	"github.com/joshuapare/regwalk/pkg/types"
)

// errReported marks failures whose message was already printed.
var errReported = errors.New("reported")

// app carries state shared by the commands of one invocation.
type app struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "regwalk [flags] HKey Key-Path",
		Short: "Traverse the Windows registry and print its values",
		Long: `regwalk walks a registry subtree depth first and prints every key
with its values. Keys come from the live registry on Windows, from offline
hive files, or from .reg exports.

Example:
  regwalk HKEY_CURRENT_USER "Software\\Python"
  regwalk HKLM "SOFTWARE\\Microsoft" -e "SOFTWARE\\Microsoft\\Windows"
  regwalk --source hive --hive "HKLM\\SOFTWARE=./SOFTWARE" HKLM Software
  regwalk --source reg --reg export.reg --format json HKCU Software`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return logger.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWalk(cmd, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default is $HOME/"+config.DefaultFileName+")")
	pf.String("source", config.DefaultSource(), "registry source: live, hive or reg")
	pf.StringArray("hive", nil, `mount an offline hive, ROOT\Prefix=FILE (repeatable)`)
	pf.StringArray("reg", nil, "load a .reg export (repeatable)")
	pf.String("log-level", "", "log level: debug, info, warn, error (enables logging)")
	pf.String("log-file", "", "write JSON logs to this file (enables logging)")

	f := cmd.Flags()
	f.StringArrayP("exclude", "e", nil, "full key path to skip (repeatable)")
	f.String("format", string(printer.FormatText), "output format: text, json or reg")
	f.Int("max-frames", 0, "maximum traversal depth (0 = unlimited)")
	f.Bool("fail-on-error", false, "exit non-zero when a branch could not be read")

	cmd.AddCommand(
		newKeysCmd(a),
		newValuesCmd(a),
		newPep514Cmd(a),
		newDumpStatsCmd(),
		newVersionCmd(),
	)
	return cmd
}

// setup resolves configuration and starts logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Options{
		Enabled: cfg.Log.Level != "" || cfg.Log.File != "",
		Level:   level,
		File:    cfg.Log.File,
		Stderr:  cmd.ErrOrStderr(),
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}
	return nil
}

// parseRoot validates the HKey argument, printing the accepted names when
// it is invalid.
func parseRoot(cmd *cobra.Command, arg string) (types.Root, error) {
	root, err := types.ParseRoot(arg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Invalid root key: %s.\nMust be one of: %s\n",
			arg, strings.Join(types.RootNames(), ", "))
		return 0, errReported
	}
	return root, nil
}

// execute runs the command line and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
