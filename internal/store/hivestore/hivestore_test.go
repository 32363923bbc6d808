package hivestore

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regwalk/internal/hivefile"
	"github.com/joshuapare/regwalk/internal/hivefile/hivetest"
	"github.com/joshuapare/regwalk/internal/printer"
	"github.com/joshuapare/regwalk/internal/regvalue"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/internal/walker"
	"github.com/joshuapare/regwalk/pkg/types"
)

func softwareHive(t *testing.T) string {
	return hivetest.WriteFile(t, &hivetest.Key{
		Name: "ROOT",
		Children: []*hivetest.Key{
			{Name: "Python", Children: []*hivetest.Key{
				{Name: "PythonCore", Values: []types.Value{
					{Name: "DisplayName", Type: types.REG_SZ, Data: regvalue.EncodeString("Python Software Foundation")},
				}},
			}},
			{Name: "Classes"},
		},
	})
}

func childNames(t *testing.T, h store.Handle) []string {
	t.Helper()
	var out []string
	for i := 0; ; i++ {
		name, err := h.SubkeyName(i)
		if err != nil {
			require.ErrorIs(t, err, types.ErrNoMoreItems)
			return out
		}
		out = append(out, name)
	}
}

func TestParseMount(t *testing.T) {
	m, err := ParseMount(`HKLM\SOFTWARE=/mnt/c/Windows/System32/config/SOFTWARE`)
	require.NoError(t, err)
	assert.Equal(t, types.LocalMachine, m.Root)
	assert.Equal(t, "SOFTWARE", m.Prefix)
	assert.Equal(t, "/mnt/c/Windows/System32/config/SOFTWARE", m.File)
	assert.Equal(t, `HKLM\SOFTWARE=/mnt/c/Windows/System32/config/SOFTWARE`, m.String())

	m, err = ParseMount(`HKEY_CURRENT_USER=~/NTUSER.DAT`)
	require.NoError(t, err)
	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, types.CurrentUser, m.Root)
	assert.Empty(t, m.Prefix)
	assert.Equal(t, filepath.Join(home, "NTUSER.DAT"), m.File)

	for _, bad := range []string{`HKLM\SOFTWARE`, `HKXX\A=/f`, `HKLM=`} {
		_, err := ParseMount(bad)
		assert.Error(t, err, bad)
	}
}

func TestOpenThroughMount(t *testing.T) {
	s, err := Open([]Mount{{Root: types.LocalMachine, Prefix: "SOFTWARE", File: softwareHive(t)}})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	h, err := s.Open(types.LocalMachine, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"SOFTWARE"}, childNames(t, h))
	_, err = h.Value(0)
	assert.ErrorIs(t, err, types.ErrNoMoreItems)

	h, err = s.Open(types.LocalMachine, "software")
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "Classes"}, childNames(t, h))

	h, err = s.Open(types.LocalMachine, `Software\python\PythonCore`)
	require.NoError(t, err)
	v, err := h.Value(0)
	require.NoError(t, err)
	assert.Equal(t, "DisplayName", v.Name)
	assert.Equal(t, "Python Software Foundation", regvalue.Render(v))
	require.NoError(t, h.Close())

	_, err = s.Open(types.LocalMachine, `SOFTWARE\Missing`)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Contains(t, err.Error(), `HKEY_LOCAL_MACHINE\SOFTWARE\Missing`)
	_, err = s.Open(types.LocalMachine, "SYSTEM")
	assert.ErrorIs(t, err, types.ErrNotFound)

	h, err = s.Open(types.Users, "")
	require.NoError(t, err)
	assert.Empty(t, childNames(t, h))
}

func TestSyntheticParents(t *testing.T) {
	file := softwareHive(t)
	s, err := Open([]Mount{
		{Root: types.Users, Prefix: `S-1-5-21\Software`, File: file},
		{Root: types.Users, Prefix: `S-1-5-21\Console`, File: file},
		{Root: types.Users, Prefix: `.DEFAULT`, File: file},
	})
	require.NoError(t, err)
	defer s.Close()

	h, err := s.Open(types.Users, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"S-1-5-21", ".DEFAULT"}, childNames(t, h))

	h, err = s.Open(types.Users, "s-1-5-21")
	require.NoError(t, err)
	assert.Equal(t, []string{"Software", "Console"}, childNames(t, h))
	assert.Len(t, s.Mounts(), 3)
}

func TestOverlappingMountsRejected(t *testing.T) {
	file := softwareHive(t)
	_, err := Open([]Mount{
		{Root: types.LocalMachine, Prefix: "SOFTWARE", File: file},
		{Root: types.LocalMachine, Prefix: `software\Classes`, File: file},
	})
	assert.ErrorContains(t, err, `HKLM\software\Classes=`+file+` overlaps HKLM\SOFTWARE=`+file)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open([]Mount{{Root: types.LocalMachine, Prefix: "SAM", File: filepath.Join(t.TempDir(), "SAM")}})
	assert.Error(t, err)
}

func TestTraverseStopsAtKeyCycle(t *testing.T) {
	file := hivetest.WriteFile(t, &hivetest.Key{
		Name: "ROOT",
		Children: []*hivetest.Key{
			{Name: "Loop", Loop: true, Children: []*hivetest.Key{{Name: "Inner"}}},
			{Name: "After"},
		},
	})
	s, err := Open([]Mount{{Root: types.LocalMachine, Prefix: "SOFTWARE", File: file}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var buf bytes.Buffer
	w := walker.New(s, printer.NewText(&buf), walker.Options{})
	require.NoError(t, w.Traverse(types.LocalMachine, "Software", nil))

	out := buf.String()
	assert.Contains(t, out, "\nComputer\\HKEY_LOCAL_MACHINE\\Software\\Loop\\Inner\n")
	assert.Contains(t, out, "\nComputer\\HKEY_LOCAL_MACHINE\\Software\\Loop\\Root\n")
	assert.Equal(t, 1, strings.Count(out, "Loop\\Root\n"))
	assert.Contains(t, out, "\nComputer\\HKEY_LOCAL_MACHINE\\Software\\After\n")
	assert.ErrorIs(t, w.Stats().Err(), hivefile.ErrKeyCycle)
}
