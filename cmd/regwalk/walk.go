package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regwalk/internal/logger"
	"github.com/joshuapare/regwalk/internal/printer"
	"github.com/joshuapare/regwalk/internal/walker"
)

func (a *app) runWalk(cmd *cobra.Command, args []string) error {
	root, err := parseRoot(cmd, args[0])
	if err != nil {
		return err
	}
	format, err := printer.ParseFormat(a.cfg.Format)
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

	sink, err := printer.New(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	w := walker.New(backend, sink, walker.Options{MaxFrames: a.cfg.MaxFrames})
	walkErr := w.Traverse(root, args[1], a.cfg.Exclude)
	closeErr := sink.Close()

	var nf *walker.NotFoundError
	if errors.As(walkErr, &nf) {
		fmt.Fprintln(cmd.ErrOrStderr(), nf.Error())
		return errReported
	}
	if walkErr != nil {
		return walkErr
	}
	if closeErr != nil {
		return closeErr
	}

	st := w.Stats()
	logger.Info("walk complete", "keys", st.Keys, "values", st.Values, "excluded", st.Excluded)
	if a.cfg.FailOnError {
		if err := st.Err(); err != nil {
			return fmt.Errorf("%d branch(es) could not be read: %w", len(st.Errors.Errors), err)
		}
	}
	return nil
}
