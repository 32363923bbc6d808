package regtext

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/regwalk/internal/regvalue"
	"github.com/joshuapare/regwalk/pkg/types"
)

// Writer streams an export. Call Header once, then Key followed by that
// key's values, and Close at the end.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter returns a Writer emitting to w with CRLF line endings.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// Header writes the version line.
func (w *Writer) Header() error {
	w.write(RegFileHeader + CRLF)
	return w.err
}

// Key starts a section for the fully qualified key path.
func (w *Writer) Key(fullPath string) error {
	w.write(CRLF + KeyOpenBracket + fullPath + KeyCloseBracket + CRLF)
	return w.err
}

// Value writes one value line of the current section.
func (w *Writer) Value(v types.Value) error {
	w.write(FormatValue(v) + CRLF)
	return w.err
}

// Close terminates the export.
func (w *Writer) Close() error {
	w.write(CRLF)
	return w.err
}

// FormatValue renders v as a single export line without the line ending.
// Long hex data wraps with continuation backslashes.
func FormatValue(v types.Value) string {
	var b strings.Builder
	if v.Name == "" {
		b.WriteString(DefaultValuePrefix)
	} else {
		b.WriteString(Quote + escape(v.Name) + Quote + ValueAssignment)
	}
	switch {
	case v.Type == types.REG_SZ && isPlainString(v.Data):
		b.WriteString(Quote + escape(regvalue.String(v.Data)) + Quote)
	case v.Type == types.REG_DWORD && len(v.Data) == 4:
		fmt.Fprintf(&b, "%s%08x", DWORDPrefix, regvalue.DWORD(v.Data))
	case v.Type == types.REG_BINARY:
		b.WriteString(HexPrefix)
		writeHex(&b, v.Data)
	default:
		fmt.Fprintf(&b, "%s%x):", HexTypedPrefix, uint32(v.Type))
		writeHex(&b, v.Data)
	}
	return b.String()
}

// isPlainString reports whether data round-trips through a quoted string.
func isPlainString(data []byte) bool {
	return bytes.Equal(regvalue.EncodeString(regvalue.String(data)), data)
}

func writeHex(b *strings.Builder, data []byte) {
	col := b.Len()
	for i, c := range data {
		fmt.Fprintf(b, "%02x", c)
		col += 2
		if i == len(data)-1 {
			break
		}
		b.WriteString(HexByteSeparator)
		col++
		if col >= lineWidth {
			b.WriteString(Backslash + CRLF + "  ")
			col = 2
		}
	}
}

func escape(s string) string {
	return strings.NewReplacer(Backslash, EscapedBackslash, Quote, EscapedQuote).Replace(s)
}
