//go:build !windows

package winstore

import (
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/pkg/types"
)

// Store is unavailable off Windows.
type Store struct{}

var _ store.Backend = (*Store)(nil)

// New reports that the live registry is unavailable on this platform.
func New() (*Store, error) {
	return nil, types.ErrUnsupported
}

// Open always fails with types.ErrUnsupported.
func (s *Store) Open(types.Root, string) (store.Handle, error) {
	return nil, types.ErrUnsupported
}
