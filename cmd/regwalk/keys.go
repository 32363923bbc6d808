package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regwalk/internal/logger"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/internal/walker"
	"github.com/joshuapare/regwalk/pkg/types"
)

func newKeysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys HKey Key-Path",
		Short: "List every key below a path, without values",
		Long: `The keys command prints the full path of each key below Key-Path,
depth first, one per line.

Example:
  regwalk keys HKCU "Software\\Python"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeys(cmd, args)
		},
	}
}

func (a *app) runKeys(cmd *cobra.Command, args []string) error {
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
	for p, err := range walker.Descendants(acc, root, path) {
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				fmt.Fprintf(out, "Registry key not found: %s\n", p)
				continue
			}
			return err
		}
		fmt.Fprintf(out, "\t%s\n", p)
	}
	return nil
}
