package printer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regwalk/internal/regtext"
	"github.com/joshuapare/regwalk/internal/regvalue"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/internal/store/memstore"
	"github.com/joshuapare/regwalk/pkg/types"
)

func sz(name, s string) types.Value {
	return types.Value{Name: name, Type: types.REG_SZ, Data: regvalue.EncodeString(s)}
}

func emit(t *testing.T, s Sink) {
	t.Helper()
	require.NoError(t, s.Key(types.CurrentUser, `Software\Test`))
	require.NoError(t, s.Value(sz("name1", "val1")))
	require.NoError(t, s.Value(types.Value{Type: types.REG_DWORD, Data: regvalue.EncodeDWORD(7)}))
	require.NoError(t, s.Excluded(`Software\Test\Skip`))
	_, err := fmt.Fprintf(DiagWriter(s), "\n%s is not a valid path\n", `Software\Test\Gone`)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "text": FormatText, "JSON": FormatJSON, "reg": FormatReg} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	emit(t, NewText(&buf))

	want := "\nComputer\\HKEY_CURRENT_USER\\Software\\Test\n" +
		"\tREG_SZ            name1                    val1\n" +
		"\tREG_DWORD         (Default)                7\n" +
		"\nUser Excluded: key-path=Software\\Test\\Skip\n" +
		"\nSoftware\\Test\\Gone is not a valid path\n"
	assert.Equal(t, want, buf.String())
}

func TestText_UnknownTypeAndWideNames(t *testing.T) {
	var buf bytes.Buffer
	s := NewText(&buf)
	long := strings.Repeat("n", 30)
	require.NoError(t, s.Value(types.Value{Name: long, Type: types.RegType(0x4007)}))
	assert.Equal(t, "\tREG_UNKNOWN       "+long+" None\n", buf.String())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	emit(t, NewJSON(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var key struct {
		Path   string
		Values []struct {
			Name  string
			Type  string
			Value any
		}
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &key))
	assert.Equal(t, `HKEY_CURRENT_USER\Software\Test`, key.Path)
	require.Len(t, key.Values, 2)
	assert.Equal(t, "val1", key.Values[0].Value)
	assert.Equal(t, "REG_DWORD", key.Values[1].Type)
	assert.InDelta(t, 7, key.Values[1].Value, 0)

	assert.JSONEq(t, `{"excluded":"Software\\Test\\Skip"}`, lines[1])
	assert.JSONEq(t, `{"diagnostic":"Software\\Test\\Gone is not a valid path"}`, lines[2])
}

func TestJSON_EmptyKeyHasEmptyValues(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSON(&buf)
	require.NoError(t, s.Key(types.LocalMachine, ""))
	require.NoError(t, s.Close())
	assert.JSONEq(t, `{"path":"HKEY_LOCAL_MACHINE","values":[]}`, buf.String())
}

func TestReg_LoadsBack(t *testing.T) {
	var buf bytes.Buffer
	emit(t, NewReg(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, regtext.RegFileHeader+"\r\n"))
	assert.Contains(t, out, "; excluded: Software\\Test\\Skip\r\n")

	s := memstore.New()
	require.NoError(t, regtext.Load(buf.Bytes(), s))
	var names []string
	for v, err := range store.NewAccessor(s, nil).Values(types.CurrentUser, `Software\Test`) {
		require.NoError(t, err)
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"name1", ""}, names)
}

func TestNew(t *testing.T) {
	for _, f := range Formats {
		s, err := New(f, &bytes.Buffer{})
		require.NoError(t, err)
		assert.NotNil(t, s)
	}
	_, err := New("yaml", &bytes.Buffer{})
	assert.Error(t, err)
}
