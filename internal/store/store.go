// Package store is the read-only bridge between the traversal engine and a
// registry backend. A Backend opens keys; the Accessor turns an open key into
// lazy sequences of child names and values and owns the handle for exactly as
// long as the sequence is being consumed.
package store

import (
	"strings"

	"github.com/joshuapare/regwalk/pkg/types"
)

// Backend opens keys for reading. Open returns an error wrapping
// types.ErrNotFound when the key does not exist and types.ErrAccessDenied when
// the caller may not read it.
type Backend interface {
	Open(root types.Root, path string) (Handle, error)
}

// Handle is an open key. Enumeration is positional: callers ask for index 0,
// 1, ... until the handle returns types.ErrNoMoreItems.
type Handle interface {
	SubkeyName(index int) (string, error)
	Value(index int) (types.Value, error)
	Close() error
}

// Closer is implemented by backends that hold resources of their own, such
// as mapped hive files.
type Closer interface {
	Close() error
}

// JoinPath joins path segments with the key separator, skipping empty
// ones, so an empty parent yields the bare child.
func JoinPath(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\\')
		}
		b.WriteString(p)
	}
	return b.String()
}
