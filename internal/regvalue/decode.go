package regvalue

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF16 decodes UTF-16LE bytes without stopping at NULs. A trailing odd
// byte is dropped.
func DecodeUTF16(data []byte) string {
	if len(data)%2 == 1 {
		data = data[:len(data)-1]
	}
	if len(data) == 0 {
		return ""
	}
	out, err := utf16le.NewDecoder().Bytes(data)
	if err != nil {
		return ""
	}
	return string(out)
}

// String decodes REG_SZ style data up to the first NUL.
func String(data []byte) string {
	s := DecodeUTF16(data)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}

// Strings decodes REG_MULTI_SZ data. Decoding stops at the first empty
// string, which is the list terminator.
func Strings(data []byte) []string {
	out := []string{}
	for _, s := range strings.Split(DecodeUTF16(data), "\x00") {
		if s == "" {
			break
		}
		out = append(out, s)
	}
	return out
}

// DWORD decodes a little-endian 32-bit value; short data is zero-padded.
func DWORD(data []byte) uint32 {
	var b [4]byte
	copy(b[:], data)
	return binary.LittleEndian.Uint32(b[:])
}

// QWORD decodes a little-endian 64-bit value; short data is zero-padded.
func QWORD(data []byte) uint64 {
	var b [8]byte
	copy(b[:], data)
	return binary.LittleEndian.Uint64(b[:])
}
