// Package hivestore serves offline hive files as a registry backend. Each
// hive is mounted under a root and key prefix, e.g. the SOFTWARE hive at
// HKLM\SOFTWARE. Keys above a mount point are synthetic: they list the next
// mount segment as their only children and carry no values.
package hivestore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/go-homedir"

	"github.com/joshuapare/regwalk/internal/hivefile"
	"github.com/joshuapare/regwalk/internal/logger"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/pkg/types"
)

// Mount places a hive file at Root\Prefix.
type Mount struct {
	Root   types.Root
	Prefix string
	File   string
}

// String returns the mount in ParseMount form, with the short root alias.
func (m Mount) String() string {
	return store.JoinPath(m.Root.Alias(), m.Prefix) + "=" + m.File
}

// ParseMount parses "ROOT[\Prefix]=FILE". The root accepts any form
// types.ParseRoot does and FILE may start with "~".
func ParseMount(spec string) (Mount, error) {
	target, file, ok := strings.Cut(spec, "=")
	if !ok || strings.TrimSpace(file) == "" {
		return Mount{}, fmt.Errorf(`invalid hive mount %q: want ROOT\Prefix=FILE`, spec)
	}
	rootName, prefix, _ := strings.Cut(strings.TrimSpace(target), `\`)
	root, err := types.ParseRoot(rootName)
	if err != nil {
		return Mount{}, fmt.Errorf("invalid hive mount %q: %w", spec, err)
	}
	path, err := homedir.Expand(strings.TrimSpace(file))
	if err != nil {
		return Mount{}, fmt.Errorf("invalid hive mount %q: %w", spec, err)
	}
	return Mount{Root: root, Prefix: strings.Join(splitPath(prefix), `\`), File: path}, nil
}

type mounted struct {
	Mount
	segs []string
	hive *hivefile.Hive
}

// Store is a read-only backend over mounted hive files.
type Store struct {
	mounts []*mounted
}

var (
	_ store.Backend = (*Store)(nil)
	_ store.Closer  = (*Store)(nil)
)

// Open maps every hive in mounts. Mount points may not nest.
func Open(mounts []Mount) (*Store, error) {
	s := &Store{}
	for _, m := range mounts {
		segs := splitPath(m.Prefix)
		for _, other := range s.mounts {
			if other.Root == m.Root && (hasPrefix(segs, other.segs) || hasPrefix(other.segs, segs)) {
				_ = s.Close()
				return nil, fmt.Errorf("hive mount %s overlaps %s", m, other.Mount)
			}
		}
		h, err := hivefile.Open(m.File)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("mount %s: %w", m, err)
		}
		if h.Header().Dirty() {
			logger.Warn("hive was not cleanly flushed; pending transaction logs are ignored", "file", m.File)
		}
		logger.Debug("mounted hive", "mount", m.String())
		s.mounts = append(s.mounts, &mounted{Mount: m, segs: segs, hive: h})
	}
	return s, nil
}

// Close unmaps every hive.
func (s *Store) Close() error {
	var result *multierror.Error
	for _, m := range s.mounts {
		if err := m.hive.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close %s: %w", m.File, err))
		}
	}
	s.mounts = nil
	return result.ErrorOrNil()
}

// Mounts returns the configured mounts in order.
func (s *Store) Mounts() []Mount {
	out := make([]Mount, len(s.mounts))
	for i, m := range s.mounts {
		out[i] = m.Mount
	}
	return out
}

// Open implements store.Backend.
func (s *Store) Open(root types.Root, path string) (store.Handle, error) {
	segs := splitPath(path)
	var synthetic []string
	for _, m := range s.mounts {
		if m.Root != root {
			continue
		}
		if hasPrefix(segs, m.segs) {
			rel := strings.Join(segs[len(m.segs):], `\`)
			k, err := m.hive.Find(rel)
			if errors.Is(err, types.ErrNotFound) {
				return nil, types.NotFoundf("%s", store.JoinPath(root.String(), path))
			}
			if err != nil {
				return nil, err
			}
			return &hiveHandle{key: k}, nil
		}
		if hasPrefix(m.segs, segs) {
			next := m.segs[len(segs)]
			if !containsFold(synthetic, next) {
				synthetic = append(synthetic, next)
			}
		}
	}
	if synthetic == nil && len(segs) > 0 {
		return nil, types.NotFoundf("%s", store.JoinPath(root.String(), path))
	}
	return &syntheticHandle{children: synthetic}, nil
}

type hiveHandle struct {
	key    hivefile.Key
	offs   []uint32
	loaded bool
}

func (h *hiveHandle) SubkeyName(i int) (string, error) {
	if !h.loaded {
		offs, err := h.key.SubkeyOffsets()
		if err != nil {
			return "", err
		}
		h.offs, h.loaded = offs, true
	}
	k, err := h.key.SubkeyAt(h.offs, i)
	if err != nil {
		return "", err
	}
	return k.Name(), nil
}

func (h *hiveHandle) Value(i int) (types.Value, error) {
	return h.key.Value(i)
}

func (h *hiveHandle) Close() error { return nil }

type syntheticHandle struct {
	children []string
}

func (h *syntheticHandle) SubkeyName(i int) (string, error) {
	if i < 0 || i >= len(h.children) {
		return "", types.ErrNoMoreItems
	}
	return h.children[i], nil
}

func (h *syntheticHandle) Value(int) (types.Value, error) {
	return types.Value{}, types.ErrNoMoreItems
}

func (h *syntheticHandle) Close() error { return nil }

func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, `\`) {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// hasPrefix reports whether prefix is a case-insensitive prefix of segs.
func hasPrefix(segs, prefix []string) bool {
	if len(prefix) > len(segs) {
		return false
	}
	for i := range prefix {
		if !strings.EqualFold(segs[i], prefix[i]) {
			return false
		}
	}
	return true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
