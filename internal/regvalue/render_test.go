package regvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuapare/regwalk/pkg/types"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		v    types.Value
		want string
	}{
		{"sz", types.Value{Type: types.REG_SZ, Data: EncodeString("val1")}, "val1"},
		{"sz stops at nul", types.Value{Type: types.REG_SZ, Data: EncodeStrings([]string{"a", "b"})}, "a"},
		{"sz empty", types.Value{Type: types.REG_SZ}, ""},
		{"expand sz", types.Value{Type: types.REG_EXPAND_SZ, Data: EncodeString(`%SystemRoot%\x`)}, `%SystemRoot%\x`},
		{"dword", types.Value{Type: types.REG_DWORD, Data: EncodeDWORD(4294967295)}, "4294967295"},
		{"dword empty", types.Value{Type: types.REG_DWORD}, "0"},
		{"qword", types.Value{Type: types.REG_QWORD, Data: EncodeQWORD(1 << 40)}, "1099511627776"},
		{"multi sz", types.Value{Type: types.REG_MULTI_SZ, Data: EncodeStrings([]string{"a", "it's"})}, `['a', "it's"]`},
		{"multi sz empty", types.Value{Type: types.REG_MULTI_SZ}, "[]"},
		{"binary", types.Value{Type: types.REG_BINARY, Data: []byte{0x01, 'A', '\\', 0xff}}, `b'\x01A\\\xff'`},
		{"binary empty", types.Value{Type: types.REG_BINARY}, "None"},
		{"none with data", types.Value{Type: types.REG_NONE, Data: []byte{0}}, `b'\x00'`},
		{"big endian dword", types.Value{Type: types.REG_DWORD_BE, Data: []byte{0, 0, 0, 1}}, `b'\x00\x00\x00\x01'`},
		{"unknown type", types.Value{Type: 0x4007, Data: []byte("ok")}, `b'ok'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.v))
		})
	}
}

func TestQuoteBytesSwitchesQuotes(t *testing.T) {
	assert.Equal(t, `b"it's"`, QuoteBytes([]byte("it's")))
	assert.Equal(t, `b'both \'"'`, QuoteBytes([]byte(`both '"`)))
}

func TestQuoteString(t *testing.T) {
	assert.Equal(t, `'tab\there'`, QuoteString("tab\there"))
	assert.Equal(t, `'äöü'`, QuoteString("äöü"))
	assert.Equal(t, `'\x00'`, QuoteString("\x00"))
}

func TestStrings(t *testing.T) {
	data := EncodeStrings([]string{"one", "two"})
	assert.Equal(t, []string{"one", "two"}, Strings(data))

	// An empty entry terminates the list.
	data = append(EncodeString("first"), EncodeStrings([]string{"", "lost"})...)
	assert.Equal(t, []string{"first"}, Strings(data))
}

func TestDecodeUTF16(t *testing.T) {
	assert.Equal(t, "abcd_äöüß", String(EncodeString("abcd_äöüß")))
	assert.Equal(t, "A", DecodeUTF16([]byte{'A', 0, 'B'}))
	assert.Equal(t, "", DecodeUTF16(nil))
}

func TestNative(t *testing.T) {
	assert.Equal(t, uint64(7), Native(types.Value{Type: types.REG_DWORD, Data: EncodeDWORD(7)}))
	assert.Equal(t, []string{"x"}, Native(types.Value{Type: types.REG_MULTI_SZ, Data: EncodeStrings([]string{"x"})}))
	assert.Nil(t, Native(types.Value{Type: types.REG_BINARY}))
	assert.Equal(t, []byte{1}, Native(types.Value{Type: types.REG_BINARY, Data: []byte{1}}))
}
