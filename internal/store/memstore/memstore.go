// Package memstore is an ordered in-memory registry. It backs .reg imports
// and tests: keys keep insertion order, lookups are case-insensitive, and
// individual keys can be marked unreadable.
package memstore

import (
	"strings"
	"sync"

	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/pkg/types"
)

type node struct {
	name     string
	children []*node
	values   []types.Value
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	return nil
}

// Store is a mutable in-memory registry. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	roots  map[types.Root]*node
	denied map[string]bool
	onOpen func(root types.Root, path string)

	open    int
	maxOpen int
	opened  []string
}

var _ store.Backend = (*Store)(nil)

// New returns an empty store in which every root exists.
func New() *Store {
	s := &Store{
		roots:  make(map[types.Root]*node, len(types.Roots)),
		denied: make(map[string]bool),
	}
	for _, r := range types.Roots {
		s.roots[r] = &node{name: r.String()}
	}
	return s
}

func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, `\`) {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func deniedKey(root types.Root, path string) string {
	return root.String() + `\` + strings.ToUpper(strings.Join(splitPath(path), `\`))
}

func (s *Store) find(root types.Root, path string) *node {
	n := s.roots[root]
	for _, seg := range splitPath(path) {
		if n == nil {
			return nil
		}
		n = n.child(seg)
	}
	return n
}

func (s *Store) ensure(root types.Root, path string) *node {
	n := s.roots[root]
	for _, seg := range splitPath(path) {
		c := n.child(seg)
		if c == nil {
			c = &node{name: seg}
			n.children = append(n.children, c)
		}
		n = c
	}
	return n
}

// CreateKey creates root\path and any missing ancestors.
func (s *Store) CreateKey(root types.Root, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(root, path)
}

// SetValue creates root\path if needed and sets v on it, replacing a value
// with the same name (case-insensitive) in place.
func (s *Store) SetValue(root types.Root, path string, v types.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.ensure(root, path)
	for i := range n.values {
		if strings.EqualFold(n.values[i].Name, v.Name) {
			n.values[i] = v
			return
		}
	}
	n.values = append(n.values, v)
}

// DeleteKey removes root\path and its subtree.
func (s *Store) DeleteKey(root types.Root, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	segs := splitPath(path)
	if len(segs) == 0 {
		return &types.Error{Kind: types.ErrKindAccessDenied, Msg: "cannot delete a root key", Err: types.ErrAccessDenied}
	}
	parent := s.find(root, strings.Join(segs[:len(segs)-1], `\`))
	if parent == nil {
		return types.NotFoundf("%s", path)
	}
	for i, c := range parent.children {
		if strings.EqualFold(c.name, segs[len(segs)-1]) {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			return nil
		}
	}
	return types.NotFoundf("%s", path)
}

// DeleteValue removes the named value from root\path.
func (s *Store) DeleteValue(root types.Root, path, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.find(root, path)
	if n == nil {
		return types.NotFoundf("%s", path)
	}
	for i, v := range n.values {
		if strings.EqualFold(v.Name, name) {
			n.values = append(n.values[:i], n.values[i+1:]...)
			return nil
		}
	}
	return types.NotFoundf("%s value %q", path, name)
}

// Deny makes Open of root\path fail with access denied. The key need not
// exist yet.
func (s *Store) Deny(root types.Root, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied[deniedKey(root, path)] = true
}

// OnOpen installs a hook that runs before every Open. Tests use it to
// mutate the store mid-walk.
func (s *Store) OnOpen(fn func(root types.Root, path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpen = fn
}

// Open implements store.Backend.
func (s *Store) Open(root types.Root, path string) (store.Handle, error) {
	s.mu.Lock()
	hook := s.onOpen
	s.mu.Unlock()
	if hook != nil {
		hook(root, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !root.Valid() {
		return nil, &types.Error{Kind: types.ErrKindInvalidRoot, Msg: root.String(), Err: types.ErrInvalidRoot}
	}
	s.opened = append(s.opened, store.JoinPath(root.String(), path))
	if s.denied[deniedKey(root, path)] {
		return nil, types.AccessDeniedf("%s", store.JoinPath(root.String(), path))
	}
	n := s.find(root, path)
	if n == nil {
		return nil, types.NotFoundf("%s", store.JoinPath(root.String(), path))
	}
	s.open++
	s.maxOpen = max(s.maxOpen, s.open)
	return &handle{s: s, n: n}, nil
}

// OpenHandles returns the number of handles not yet closed.
func (s *Store) OpenHandles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// MaxOpenHandles returns the high-water mark of simultaneously open handles.
func (s *Store) MaxOpenHandles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxOpen
}

// Opened returns every path passed to Open, successful or not, in order.
func (s *Store) Opened() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.opened...)
}

type handle struct {
	s      *Store
	n      *node
	closed bool
}

func (h *handle) SubkeyName(i int) (string, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.closed || i < 0 || i >= len(h.n.children) {
		return "", types.ErrNoMoreItems
	}
	return h.n.children[i].name, nil
}

func (h *handle) Value(i int) (types.Value, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.closed || i < 0 || i >= len(h.n.values) {
		return types.Value{}, types.ErrNoMoreItems
	}
	return h.n.values[i], nil
}

func (h *handle) Close() error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.s.open--
	return nil
}
