package printer

import (
	"fmt"
	"io"

	"github.com/joshuapare/regwalk/internal/regvalue"
	"github.com/joshuapare/regwalk/pkg/types"
)

const (
	typeColWidth = 17
	nameColWidth = 24

	// DefaultName is printed for the unnamed value of a key.
	DefaultName = "(Default)"
)

// Text writes the console layout:
//
//	\nComputer\<ROOT>\<Path>
//	\t<type> <name> <value>
type Text struct {
	w   io.Writer
	err error
}

// NewText returns a text sink.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

func (t *Text) printf(format string, args ...any) error {
	if t.err == nil {
		_, t.err = fmt.Fprintf(t.w, format, args...)
	}
	return t.err
}

func (t *Text) Key(root types.Root, path string) error {
	return t.printf("\nComputer\\%s\\%s\n", root, path)
}

func (t *Text) Value(v types.Value) error {
	name := v.Name
	if name == "" {
		name = DefaultName
	}
	return t.printf("\t%-*s %-*s %s\n", typeColWidth, v.Type.Label(), nameColWidth, name, regvalue.Render(v))
}

func (t *Text) Excluded(path string) error {
	return t.printf("\nUser Excluded: key-path=%s\n", path)
}

func (t *Text) Diagnostic(line string) error {
	return t.printf("%s\n", line)
}

func (t *Text) Close() error { return t.err }
