package main

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/joshuapare/regwalk/internal/config"
	"github.com/joshuapare/regwalk/internal/logger"
	"github.com/joshuapare/regwalk/internal/regtext"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/internal/store/hivestore"
	"github.com/joshuapare/regwalk/internal/store/memstore"
	"github.com/joshuapare/regwalk/internal/store/winstore"
)

// openBackend builds the key store selected by cfg. The returned func
// releases it.
func openBackend(cfg *config.Config) (store.Backend, func() error, error) {
	noop := func() error { return nil }
	if err := cfg.Validate(); err != nil {
		return nil, noop, err
	}

	switch cfg.Source {
	case config.SourceHive:
		var (
			mounts []hivestore.Mount
			errs   *multierror.Error
		)
		for _, spec := range cfg.Hives {
			m, err := hivestore.ParseMount(spec)
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			mounts = append(mounts, m)
		}
		if err := errs.ErrorOrNil(); err != nil {
			return nil, noop, err
		}
		s, err := hivestore.Open(mounts)
		if err != nil {
			return nil, noop, err
		}
		for _, m := range s.Mounts() {
			logger.Info("hive mounted", "mount", m.String())
		}
		return s, s.Close, nil

	case config.SourceReg:
		s := memstore.New()
		for _, f := range cfg.RegFiles {
			if err := regtext.LoadFile(f, s); err != nil {
				return nil, noop, err
			}
			logger.Debug("reg file loaded", "file", f)
		}
		return s, noop, nil

	case config.SourceLive:
		s, err := winstore.New()
		if err != nil {
			return nil, noop, fmt.Errorf("live registry: %w", err)
		}
		return s, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown source %q", cfg.Source)
}
