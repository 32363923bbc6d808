package printer

import (
	"io"

	"github.com/joshuapare/regwalk/internal/regtext"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/pkg/types"
)

// Reg writes a registry editor export of the visited keys. Exclusions and
// diagnostics become comment lines.
type Reg struct {
	w      io.Writer
	rw     *regtext.Writer
	header bool
	err    error
}

// NewReg returns a .reg sink.
func NewReg(w io.Writer) *Reg {
	return &Reg{w: w, rw: regtext.NewWriter(w)}
}

func (r *Reg) start() error {
	if r.err == nil && !r.header {
		r.header = true
		r.err = r.rw.Header()
	}
	return r.err
}

func (r *Reg) comment(s string) error {
	if err := r.start(); err != nil {
		return err
	}
	_, r.err = io.WriteString(r.w, regtext.CommentPrefix+" "+s+regtext.CRLF)
	return r.err
}

func (r *Reg) Key(root types.Root, path string) error {
	if err := r.start(); err != nil {
		return err
	}
	r.err = r.rw.Key(store.JoinPath(root.String(), path))
	return r.err
}

func (r *Reg) Value(v types.Value) error {
	if err := r.start(); err != nil {
		return err
	}
	r.err = r.rw.Value(v)
	return r.err
}

func (r *Reg) Excluded(path string) error {
	return r.comment("excluded: " + path)
}

func (r *Reg) Diagnostic(line string) error {
	if line == "" {
		return r.err
	}
	return r.comment(line)
}

func (r *Reg) Close() error {
	if err := r.start(); err != nil {
		return err
	}
	r.err = r.rw.Close()
	return r.err
}
