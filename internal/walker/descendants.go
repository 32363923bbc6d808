package walker

import (
	"iter"

	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/pkg/types"
)

// Descendants yields the full path of every key below root\path in
// pre-order, without the starting key itself. An enumeration error is
// yielded with the path of the key that failed; returning true from yield
// skips that branch and continues with its siblings.
func Descendants(acc *store.Accessor, root types.Root, path string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		type frame struct {
			path string
			next func() (string, error, bool)
			stop func()
		}
		push := func(p string) *frame {
			next, stop := iter.Pull2(acc.Children(root, p))
			return &frame{path: p, next: next, stop: stop}
		}
		stack := []*frame{push(path)}
		defer func() {
			for _, f := range stack {
				f.stop()
			}
		}()

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			name, err, ok := top.next()
			if !ok || err != nil {
				top.stop()
				stack = stack[:len(stack)-1]
				if err != nil && !yield(top.path, err) {
					return
				}
				continue
			}
			child := store.JoinPath(top.path, name)
			if !yield(child, nil) {
				return
			}
			stack = append(stack, push(child))
		}
	}
}
