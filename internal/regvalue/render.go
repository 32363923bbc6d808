package regvalue

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/joshuapare/regwalk/pkg/types"
)

// None is printed for non-string values that carry no data.
const None = "None"

// Render returns the printed form of a value's data.
func Render(v types.Value) string {
	switch v.Type {
	case types.REG_SZ, types.REG_EXPAND_SZ:
		return String(v.Data)
	case types.REG_DWORD:
		return strconv.FormatUint(uint64(DWORD(v.Data)), 10)
	case types.REG_QWORD:
		return strconv.FormatUint(QWORD(v.Data), 10)
	case types.REG_MULTI_SZ:
		items := Strings(v.Data)
		quoted := make([]string, len(items))
		for i, s := range items {
			quoted[i] = QuoteString(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		if len(v.Data) == 0 {
			return None
		}
		return QuoteBytes(v.Data)
	}
}

// Native returns the data as a Go value suited to structured encoders:
// string, uint64, []string, []byte, or nil for empty binary data.
func Native(v types.Value) any {
	switch v.Type {
	case types.REG_SZ, types.REG_EXPAND_SZ:
		return String(v.Data)
	case types.REG_DWORD:
		return uint64(DWORD(v.Data))
	case types.REG_QWORD:
		return QWORD(v.Data)
	case types.REG_MULTI_SZ:
		return Strings(v.Data)
	default:
		if len(v.Data) == 0 {
			return nil
		}
		return v.Data
	}
}

// QuoteString quotes s with single quotes, switching to double quotes when s
// contains a single quote but no double quote.
func QuoteString(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r > 0x7f && !unicode.IsPrint(r):
			switch {
			case r <= 0xff:
				fmt.Fprintf(&b, `\x%02x`, r)
			case r <= 0xffff:
				fmt.Fprintf(&b, `\u%04x`, r)
			default:
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// QuoteBytes renders data as a bytes literal, e.g. b'\x01A'.
func QuoteBytes(data []byte) string {
	q := byte('\'')
	hasSingle, hasDouble := false, false
	for _, c := range data {
		hasSingle = hasSingle || c == '\''
		hasDouble = hasDouble || c == '"'
	}
	if hasSingle && !hasDouble {
		q = '"'
	}
	var b strings.Builder
	b.Grow(len(data)*2 + 3)
	b.WriteByte('b')
	b.WriteByte(q)
	for _, c := range data {
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == q:
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)
	return b.String()
}
