package store

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/joshuapare/regwalk/internal/logger"
	"github.com/joshuapare/regwalk/pkg/types"
)

// PermissionHint follows every access-denied report.
const PermissionHint = "Permission Error: you may need to run the script as Admin."

// Accessor enumerates keys of a Backend. Access-denied failures are reported
// to the diagnostic writer and produce empty sequences; every other failure
// is handed to the consumer.
type Accessor struct {
	backend Backend
	diag    io.Writer
}

// NewAccessor returns an Accessor reading from b and reporting access-denied
// failures to diag.
func NewAccessor(b Backend, diag io.Writer) *Accessor {
	if diag == nil {
		diag = io.Discard
	}
	return &Accessor{backend: b, diag: diag}
}

// Children yields the names of the subkeys of root\path in store order.
func (a *Accessor) Children(root types.Root, path string) iter.Seq2[string, error] {
	return enumerate(a, root, path, Handle.SubkeyName)
}

// Values yields the values of root\path in store order.
func (a *Accessor) Values(root types.Root, path string) iter.Seq2[types.Value, error] {
	return enumerate(a, root, path, Handle.Value)
}

// Exists opens and closes root\path. It returns the open error unchanged,
// including access-denied, without reporting it.
func (a *Accessor) Exists(root types.Root, path string) error {
	h, err := a.backend.Open(root, path)
	if err != nil {
		return err
	}
	closeHandle(h, root, path)
	return nil
}

func enumerate[T any](a *Accessor, root types.Root, path string, next func(Handle, int) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		h, err := a.backend.Open(root, path)
		if err != nil {
			if errors.Is(err, types.ErrAccessDenied) {
				a.reportDenied(root, path, err)
				return
			}
			yield(zero, err)
			return
		}
		defer closeHandle(h, root, path)

		for i := 0; ; i++ {
			item, err := next(h, i)
			switch {
			case errors.Is(err, types.ErrNoMoreItems):
				return
			case errors.Is(err, types.ErrAccessDenied):
				a.reportDenied(root, path, err)
				return
			case err != nil:
				yield(zero, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

func (a *Accessor) reportDenied(root types.Root, path string, err error) {
	logger.Warn("access denied", "root", root.String(), "path", path, "err", err)
	fmt.Fprintf(a.diag, "%v: %s\n", err, PermissionHint)
}

func closeHandle(h Handle, root types.Root, path string) {
	if err := h.Close(); err != nil {
		logger.Debug("close key", "root", root.String(), "path", path, "err", err)
	}
}
