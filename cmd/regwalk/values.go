package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regwalk/internal/logger"
	"github.com/joshuapare/regwalk/internal/regvalue"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/internal/walker"
	"github.com/joshuapare/regwalk/pkg/types"
)

const valueNameWidth = 24

func newValuesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "values HKey Key-Path",
		Short: "Print the values of a single key",
		Long: `The values command prints the values of one key without recursing
into its subkeys.

Example:
  regwalk values HKCU "Software\\Python\\PythonCore"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValues(cmd, args)
		},
	}
}

func (a *app) runValues(cmd *cobra.Command, args []string) error {
	root, err := parseRoot(cmd, args[0])
	if err != nil {
		return err
	}
	backend, release, err := openBackend(a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("release backend", "err", err)
		}
	}()

	out := cmd.OutOrStdout()
	path := walker.DisplayPath(args[1])
	fmt.Fprintf(out, "Computer\\\\%s\\\\\n", root)

	acc := store.NewAccessor(backend, out)
	if err := acc.Exists(root, path); err != nil && !errors.Is(err, types.ErrAccessDenied) {
		if errors.Is(err, types.ErrNotFound) {
			fmt.Fprintf(out, "Registry key not found: %s\n", path)
			return errReported
		}
		return err
	}

	fmt.Fprintf(out, "\t%s\n", path)
	for v, err := range acc.Values(root, path) {
		if err != nil {
			return err
		}
		name := v.Name
		if name == "" {
			name = "Default"
		}
		fmt.Fprintf(out, "\t\t%-*s%s\n", valueNameWidth, name, regvalue.Render(v))
	}
	fmt.Fprintln(out)
	return nil
}
