package regtext

import (
	"bytes"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/regwalk/internal/regvalue"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/internal/store/memstore"
	"github.com/joshuapare/regwalk/pkg/types"
)

func collect[T any](t *testing.T, seq iter.Seq2[T, error]) []T {
	t.Helper()
	var out []T
	for v, err := range seq {
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

const sample = `Windows Registry Editor Version 5.00

; exported for tests
[HKEY_CURRENT_USER\Software\Test]
@="default"
"Path"="C:\\Program Files\\\"App\""
"Count"=dword:0000002a
"Blob"=hex:de,ad,\
  be,ef
"Big"=hex(b):01,00,00,00,00,00,00,00
"List"=hex(7):61,00,00,00,62,00,00,00,00,00

[HKEY_CURRENT_USER\Software\Test\Subkey]
"Name"="Value"
`

func TestLoad(t *testing.T) {
	s := memstore.New()
	require.NoError(t, Load([]byte(sample), s))
	acc := store.NewAccessor(s, nil)

	vals := collect(t, acc.Values(types.CurrentUser, `Software\Test`))
	require.Len(t, vals, 6)

	assert.Equal(t, "", vals[0].Name)
	assert.Equal(t, "default", regvalue.String(vals[0].Data))
	assert.Equal(t, `C:\Program Files\"App"`, regvalue.String(vals[1].Data))
	assert.Equal(t, types.REG_DWORD, vals[2].Type)
	assert.Equal(t, uint32(42), regvalue.DWORD(vals[2].Data))
	assert.Equal(t, types.REG_BINARY, vals[3].Type)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, vals[3].Data)
	assert.Equal(t, types.REG_QWORD, vals[4].Type)
	assert.Equal(t, uint64(1), regvalue.QWORD(vals[4].Data))
	assert.Equal(t, types.REG_MULTI_SZ, vals[5].Type)
	assert.Equal(t, []string{"a", "b"}, regvalue.Strings(vals[5].Data))

	assert.Equal(t, []string{"Subkey"}, collect(t, acc.Children(types.CurrentUser, `Software\Test`)))
}

func TestLoad_Deletions(t *testing.T) {
	s := memstore.New()
	require.NoError(t, Load([]byte(sample), s))

	patch := "Windows Registry Editor Version 5.00\r\n\r\n" +
		"[-HKEY_CURRENT_USER\\Software\\Test\\Subkey]\r\n\r\n" +
		"[HKEY_CURRENT_USER\\Software\\Test]\r\n\"Count\"=-\r\n\"Missing\"=-\r\n"
	require.NoError(t, Load([]byte(patch), s))

	acc := store.NewAccessor(s, nil)
	assert.Empty(t, collect(t, acc.Children(types.CurrentUser, `Software\Test`)))
	for _, v := range collect(t, acc.Values(types.CurrentUser, `Software\Test`)) {
		assert.NotEqual(t, "Count", v.Name)
	}
}

func TestLoad_RootAliases(t *testing.T) {
	s := memstore.New()
	data := "REGEDIT4\n\n[HKLM\\Software\\A]\n\"x\"=\"1\"\n"
	require.NoError(t, Load([]byte(data), s))
	assert.NoError(t, store.NewAccessor(s, nil).Exists(types.LocalMachine, `Software\A`))
}

func TestLoad_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte(sample))
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0xfe}, data[:2])

	s := memstore.New()
	require.NoError(t, Load(data, s))
	assert.NoError(t, store.NewAccessor(s, nil).Exists(types.CurrentUser, `Software\Test\Subkey`))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no header", "[HKEY_CURRENT_USER\\X]\n"},
		{"bad root", RegFileHeader + "\n[HKEY_NOPE\\X]\n"},
		{"value before section", RegFileHeader + "\n\"a\"=\"b\"\n"},
		{"bad dword", RegFileHeader + "\n[HKCU\\X]\n\"a\"=dword:zz\n"},
		{"bad hex", RegFileHeader + "\n[HKCU\\X]\n\"a\"=hex:0g\n"},
		{"unterminated name", RegFileHeader + "\n[HKCU\\X]\n\"a=\"b\n"},
		{"unclosed section", RegFileHeader + "\n[HKCU\\X\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Load([]byte(tt.data), memstore.New()))
		})
	}
}

func TestLoad_MissingHeaderSentinel(t *testing.T) {
	err := Load([]byte("\n\n"), memstore.New())
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.reg")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	s := memstore.New()
	require.NoError(t, LoadFile(path, s))

	err := LoadFile(filepath.Join(t.TempDir(), "missing.reg"), s)
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		v    types.Value
		want string
	}{
		{"default", types.Value{Type: types.REG_SZ, Data: regvalue.EncodeString("x")}, `@="x"`},
		{"escaped", types.Value{Name: `a"b`, Type: types.REG_SZ, Data: regvalue.EncodeString(`C:\`)}, `"a\"b"="C:\\"`},
		{"dword", types.Value{Name: "n", Type: types.REG_DWORD, Data: regvalue.EncodeDWORD(255)}, `"n"=dword:000000ff`},
		{"binary", types.Value{Name: "b", Type: types.REG_BINARY, Data: []byte{1, 0xab}}, `"b"=hex:01,ab`},
		{"qword", types.Value{Name: "q", Type: types.REG_QWORD, Data: regvalue.EncodeQWORD(2)}, `"q"=hex(b):02,00,00,00,00,00,00,00`},
		{"none", types.Value{Name: "z", Type: types.REG_NONE}, `"z"=hex(0):`},
		{"unterminated sz", types.Value{Name: "s", Type: types.REG_SZ, Data: []byte{'a', 0}}, `"s"=hex(1):61,00`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.v))
		})
	}
}

func TestFormatValue_Wraps(t *testing.T) {
	line := FormatValue(types.Value{Name: "long", Type: types.REG_BINARY, Data: bytes.Repeat([]byte{0x11}, 64)})
	parts := strings.Split(line, CRLF)
	require.Greater(t, len(parts), 1)
	for _, p := range parts[:len(parts)-1] {
		assert.True(t, strings.HasSuffix(p, ",\\"), p)
		assert.LessOrEqual(t, len(p), lineWidth+2)
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	src := memstore.New()
	require.NoError(t, Load([]byte(sample), src))
	acc := store.NewAccessor(src, nil)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Header())
	for _, path := range []string{`Software\Test`, `Software\Test\Subkey`} {
		require.NoError(t, w.Key(store.JoinPath(types.CurrentUser.String(), path)))
		for _, v := range collect(t, acc.Values(types.CurrentUser, path)) {
			require.NoError(t, w.Value(v))
		}
	}
	require.NoError(t, w.Close())
	assert.True(t, strings.HasPrefix(buf.String(), RegFileHeader+CRLF+CRLF+`[HKEY_CURRENT_USER\Software\Test]`+CRLF))

	dst := memstore.New()
	require.NoError(t, Load(buf.Bytes(), dst))
	again := store.NewAccessor(dst, nil)
	for _, path := range []string{`Software\Test`, `Software\Test\Subkey`} {
		assert.Equal(t,
			collect(t, acc.Values(types.CurrentUser, path)),
			collect(t, again.Values(types.CurrentUser, path)))
	}
}
