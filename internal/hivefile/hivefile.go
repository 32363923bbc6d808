// Package hivefile reads keys and values out of an offline registry hive
// (regf) file. It resolves cells lazily: nothing beyond the base block is
// decoded until a key is asked for.
package hivefile

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/joshuapare/regwalk/internal/format"
	"github.com/joshuapare/regwalk/internal/mmfile"
	"github.com/joshuapare/regwalk/pkg/types"
)

// ErrKeyCycle reports a subkey list that leads back to a key already on the
// path being resolved.
var ErrKeyCycle = errors.New("subkey list loops back to an ancestor")

// Hive is an open hive image.
type Hive struct {
	path    string
	buf     []byte
	release func() error
	head    format.Header
	closed  bool
}

// Open maps the hive at path.
func Open(path string) (*Hive, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("open hive: %w", err)
	}
	h, err := newHive(path, data, release)
	if err != nil {
		if release != nil {
			_ = release()
		}
		return nil, err
	}
	return h, nil
}

// OpenBytes wraps an in-memory hive image.
func OpenBytes(data []byte) (*Hive, error) {
	return newHive("", data, nil)
}

func newHive(path string, data []byte, release func() error) (*Hive, error) {
	head, err := format.ParseHeader(data)
	if err != nil {
		return nil, formatErr(path, err)
	}
	if _, _, err := format.NextHBIN(data, format.HeaderSize); err != nil {
		return nil, formatErr(path, err)
	}
	return &Hive{path: path, buf: data, release: release, head: head}, nil
}

// Close releases the mapping. Keys obtained from the hive must not be used
// afterwards.
func (h *Hive) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if h.release != nil {
		return h.release()
	}
	return nil
}

// Path returns the file the hive was opened from, if any.
func (h *Hive) Path() string { return h.path }

// Header returns the parsed base block.
func (h *Hive) Header() format.Header { return h.head }

// Root returns the hive's root key.
func (h *Hive) Root() (Key, error) {
	return h.key(h.head.RootCellOffset)
}

// Find resolves a backslash-separated path relative to the hive root. Names
// compare case-insensitively. A missing segment yields a NotFound error. A
// path that reaches the same key twice, which only a corrupt subkey list can
// produce, yields a Format error.
func (h *Hive) Find(path string) (Key, error) {
	k, err := h.Root()
	if err != nil {
		return Key{}, err
	}
	seen := []uint32{k.Offset()}
	for _, seg := range strings.Split(path, `\`) {
		if seg == "" {
			continue
		}
		k, err = k.Child(seg)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return Key{}, types.NotFoundf("%s", path)
			}
			return Key{}, err
		}
		if slices.Contains(seen, k.Offset()) {
			return Key{}, formatErr(h.path, fmt.Errorf("%w: key 0x%x repeats on path %s", ErrKeyCycle, k.Offset(), path))
		}
		seen = append(seen, k.Offset())
	}
	return k, nil
}

func (h *Hive) payload(off uint32) ([]byte, error) {
	if h.closed {
		return nil, errors.New("hivefile: hive is closed")
	}
	data, err := format.CellPayload(h.buf, off)
	if err != nil {
		return nil, formatErr(h.path, err)
	}
	return data, nil
}

func (h *Hive) key(off uint32) (Key, error) {
	data, err := h.payload(off)
	if err != nil {
		return Key{}, err
	}
	nk, err := format.DecodeNK(data)
	if err != nil {
		return Key{}, formatErr(h.path, err)
	}
	return Key{hive: h, off: off, nk: nk}, nil
}

func formatErr(path string, err error) error {
	msg := "malformed hive"
	if path != "" {
		msg = "malformed hive " + path
	}
	return &types.Error{Kind: types.ErrKindFormat, Msg: msg, Err: errors.Join(types.ErrFormat, err)}
}
