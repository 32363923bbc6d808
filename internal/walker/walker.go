// Package walker performs the recursive, pre-order registry traversal.
//
// The walk keeps an explicit stack of frames, each holding a pull iterator
// over one key's children, so tree depth is bounded by memory rather than
// the goroutine stack. A frame owns exactly one open handle; printing a
// key's values opens and releases a second one.
package walker

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode"

	"github.com/hashicorp/go-multierror"

	"github.com/joshuapare/regwalk/internal/logger"
	"github.com/joshuapare/regwalk/internal/printer"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/pkg/types"
)

// Options tunes a Walker.
type Options struct {
	// MaxFrames bounds the depth of the frame stack. Zero means unbounded.
	// Keys below the bound are printed but not descended into.
	MaxFrames int
}

// Stats summarizes the last traversal.
type Stats struct {
	Keys     int
	Values   int
	Excluded int
	// Errors collects branch failures that were reported and absorbed.
	Errors *multierror.Error
}

// Err returns the absorbed branch failures, or nil.
func (s Stats) Err() error {
	return s.Errors.ErrorOrNil()
}

// Walker traverses a backend and writes events to a sink.
type Walker struct {
	acc   *store.Accessor
	sink  printer.Sink
	diag  io.Writer
	opts  Options
	stats Stats
}

// New returns a Walker over b. Access-denied reports and other diagnostics
// go to the sink so they interleave with the traversal output. The caller
// owns the sink and closes it.
func New(b store.Backend, sink printer.Sink, opts Options) *Walker {
	diag := printer.DiagWriter(sink)
	return &Walker{
		acc:  store.NewAccessor(b, diag),
		sink: sink,
		diag: diag,
		opts: opts,
	}
}

// Stats returns the counters of the last Traverse call.
func (w *Walker) Stats() Stats {
	return w.stats
}

// frame enumerates the children of one printed key. Keys alternate between
// cycle starts, whose path is display-normalized, and plain children, whose
// own children start the next cycle.
type frame struct {
	path string
	// restart is set on frames over plain children.
	restart bool
	next    func() (string, error, bool)
	stop    func()
}

func (w *Walker) push(root types.Root, path string, restart bool) *frame {
	next, stop := iter.Pull2(w.acc.Children(root, path))
	return &frame{path: path, restart: restart, next: next, stop: stop}
}

// Traverse prints root\path, its values and every descendant not pruned by
// exclusions. exclusions must be a []string of full key paths; nil means
// none, and any other value is reported and ignored.
//
// The start path is passed through DisplayPath, and so is the full path of
// every key two levels below a key that was. Children in between print
// under the normalized prefix with their stored names.
//
// Only an invalid root, a missing starting path or a sink failure end the
// walk with an error. A key that vanishes mid-walk stops its own branch.
func (w *Walker) Traverse(root types.Root, path string, exclusions any) error {
	w.stats = Stats{}
	if !root.Valid() {
		return &types.Error{Kind: types.ErrKindInvalidRoot, Msg: root.String(), Err: types.ErrInvalidRoot}
	}

	excluded, err := w.normalizeExclusions(exclusions)
	if err != nil {
		return err
	}
	path = DisplayPath(path)
	logger.Debug("traverse", "root", root.String(), "path", path, "exclusions", len(excluded))

	if err := w.acc.Exists(root, path); err != nil && !errors.Is(err, types.ErrAccessDenied) {
		return w.startError(path, err)
	}
	if err := w.visit(root, path); err != nil {
		return w.startError(path, err)
	}

	start := w.push(root, path, false)
	stack := []*frame{start}
	defer func() {
		for _, f := range stack {
			f.stop()
		}
	}()

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		name, err, ok := top.next()
		if !ok {
			top.stop()
			stack = stack[:len(stack)-1]
			continue
		}
		if err != nil {
			if top == start {
				return w.startError(path, err)
			}
			top.stop()
			stack = stack[:len(stack)-1]
			if err := w.absorb(top.path, err); err != nil {
				return err
			}
			continue
		}

		child := store.JoinPath(top.path, name)
		if excluded[strings.ToUpper(child)] {
			w.stats.Excluded++
			if err := w.sink.Excluded(child); err != nil {
				return err
			}
			continue
		}

		if top.restart {
			child = DisplayPath(child)
		}
		if err := w.visit(root, child); err != nil {
			if err := w.absorb(child, err); err != nil {
				return err
			}
			continue
		}

		if w.opts.MaxFrames > 0 && len(stack) >= w.opts.MaxFrames {
			limit := &types.Error{Kind: types.ErrKindRecursionLimit, Msg: child, Err: types.ErrRecursionLimit}
			if err := w.absorb(child, limit); err != nil {
				return err
			}
			continue
		}
		stack = append(stack, w.push(root, child, !top.restart))
	}
	return nil
}

// visit prints the header and values of one key.
func (w *Walker) visit(root types.Root, path string) error {
	if err := w.sink.Key(root, path); err != nil {
		return sinkError{err}
	}
	w.stats.Keys++
	for v, err := range w.acc.Values(root, path) {
		if err != nil {
			return err
		}
		if err := w.sink.Value(v); err != nil {
			return sinkError{err}
		}
		w.stats.Values++
	}
	return nil
}

// absorb reports a branch failure and records it. Sink failures are not
// absorbable and are returned.
func (w *Walker) absorb(path string, err error) error {
	var se sinkError
	if errors.As(err, &se) {
		return se.err
	}
	logger.Warn("branch stopped", "path", path, "err", err)
	w.stats.Errors = multierror.Append(w.stats.Errors, err)
	switch {
	case errors.Is(err, types.ErrNotFound):
		_, werr := fmt.Fprintf(w.diag, "\n%s is not a valid path\n", path)
		return werr
	default:
		_, werr := fmt.Fprintln(w.diag, err)
		return werr
	}
}

// startError maps a failure on the starting key to the error returned by
// Traverse.
func (w *Walker) startError(path string, err error) error {
	var se sinkError
	if errors.As(err, &se) {
		return se.err
	}
	if errors.Is(err, types.ErrNotFound) {
		return &NotFoundError{Path: path, Err: err}
	}
	return err
}

type sinkError struct{ err error }

func (e sinkError) Error() string { return e.err.Error() }
func (e sinkError) Unwrap() error { return e.err }

// NotFoundError reports a starting path that does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("\n%s is not a valid path", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// DisplayPath title-cases path: a cased letter following an uncased
// character is upper-cased and every other cased letter lower-cased, so
// `clsid\{d3e34b21-9d75}` becomes `Clsid\{D3E34B21-9D75}`. Lookups are
// case-insensitive so the result still addresses the same key.
func DisplayPath(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	prevCased := false
	for _, r := range path {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && prevCased:
			r = unicode.ToLower(r)
		case cased:
			r = unicode.ToTitle(r)
		}
		b.WriteRune(r)
		prevCased = cased
	}
	return b.String()
}

// invalid exclusion notices, printed before any traversal output.
const (
	invalidExclusionsFmt = "Exclude '%v' not valid, should be list(str)"
	ignoringExclusions   = "Ignoring and continuing with no exclusions."
)

func (w *Walker) normalizeExclusions(exclusions any) (map[string]bool, error) {
	switch ex := exclusions.(type) {
	case nil:
		return map[string]bool{}, nil
	case []string:
		set := make(map[string]bool, len(ex))
		for _, p := range ex {
			set[strings.ToUpper(p)] = true
		}
		return set, nil
	}
	logger.Warn("ignoring exclusions", "value", fmt.Sprintf("%v", exclusions), "err", types.ErrInvalidExclusions)
	for _, line := range []string{fmt.Sprintf(invalidExclusionsFmt, exclusions), ignoringExclusions} {
		if err := w.sink.Diagnostic(line); err != nil {
			return nil, err
		}
	}
	return map[string]bool{}, nil
}
