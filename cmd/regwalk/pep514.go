package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regwalk/internal/logger"
	"github.com/joshuapare/regwalk/internal/pep514"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/pkg/types"
)

func newPep514Cmd(a *app) *cobra.Command {
	var (
		company string
		detail  bool
	)
	cmd := &cobra.Command{
		Use:   "pep514",
		Short: "List Python environments registered per PEP 514",
		Long: `The pep514 command lists the Python installations registered under
Software\Python in HKEY_CURRENT_USER and HKEY_LOCAL_MACHINE. With --detail it
prints the full metadata of one company, filling in the PEP 514 defaults.

Example:
  regwalk pep514
  regwalk pep514 --company Astral
  regwalk pep514 --detail`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			finder := pep514.NewFinder(store.NewAccessor(backend, out))
			if !detail {
				envs, err := finder.Environments(company)
				if err != nil {
					return err
				}
				return pep514.WriteEnvironments(out, envs)
			}

			name := company
			if name == "" {
				name = pep514.PythonCore
			}
			for _, loc := range pep514.Locations {
				c, err := finder.Company(loc.Root, name)
				if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrAccessDenied) {
					logger.Debug("company not registered", "root", loc.Root.String(), "company", name)
					continue
				}
				if err != nil {
					return err
				}
				if err := pep514.WriteCompany(out, c); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "only this company (default all; PythonCore with --detail)")
	cmd.Flags().BoolVar(&detail, "detail", false, "print the full metadata with PEP 514 fallbacks")
	return cmd
}
