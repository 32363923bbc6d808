package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestKeysCommand(t *testing.T) {
	stdout, stderr, code := runCLI(t, "--source", "reg", "--reg", testReg(t), "keys", "HKCU", `software\test`)
	require.Equal(t, 0, code, stderr)

	want := "Computer\\\\HKEY_CURRENT_USER\\\\\n" +
		"\tSoftware\\Test\\Subkey\n" +
		"\tSoftware\\Test\\Subkey\\Deeper\n"
	assert.Equal(t, want, stdout)
}

func TestKeysCommand_Missing(t *testing.T) {
	stdout, _, code := runCLI(t, "--source", "reg", "--reg", testReg(t), "keys", "HKCU", `Software\Nope`)
	assert.Equal(t, 0, code)
	assertContains(t, stdout, []string{"Registry key not found: Software\\Nope"})
}

func TestValuesCommand(t *testing.T) {
	reg := writeReg(t,
		`[HKEY_CURRENT_USER\Software\Python\PythonCore]`,
		`@="core"`,
		`"DisplayName"="Python Software Foundation"`,
		``,
		`[HKEY_CURRENT_USER\Software\Python\PythonCore\3.12]`,
		`"Version"="3.12.1"`,
	)
	stdout, stderr, code := runCLI(t, "--source", "reg", "--reg", reg, "values", "HKCU", `Software\Python\PythonCore`)
	require.Equal(t, 0, code, stderr)

	want := "Computer\\\\HKEY_CURRENT_USER\\\\\n" +
		"\tSoftware\\Python\\Pythoncore\n" +
		"\t\tDefault                 core\n" +
		"\t\tDisplayName             Python Software Foundation\n" +
		"\n"
	assert.Equal(t, want, stdout)
	assertNotContains(t, stdout, []string{"3.12.1"})
}

func TestValuesCommand_Missing(t *testing.T) {
	stdout, _, code := runCLI(t, "--source", "reg", "--reg", testReg(t), "values", "HKCU", `Software\Nope`)
	assert.Equal(t, 1, code)
	assertContains(t, stdout, []string{"Registry key not found: Software\\Nope"})
}

func TestPep514Command(t *testing.T) {
	reg := writeReg(t,
		`[HKEY_CURRENT_USER\Software\Python\PyLauncher]`,
		``,
		`[HKEY_CURRENT_USER\Software\Python\PythonCore\3.12\InstallPath]`,
		`@="C:\\Python312"`,
		`"ExecutablePath"="C:\\Python312\\python.exe"`,
		``,
		`[HKEY_LOCAL_MACHINE\Software\Python\Astral\CPython3.13]`,
	)

	stdout, stderr, code := runCLI(t, "--source", "reg", "--reg", reg, "pep514")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "PythonCore\\3.12 - C:\\Python312\\python.exe \n"+
		"Astral\\CPython3.13 - (not executable)\n", stdout)

	stdout, stderr, code = runCLI(t, "--source", "reg", "--reg", reg, "pep514", "--detail")
	require.Equal(t, 0, code, stderr)
	assertContains(t, stdout, []string{
		"Company: Python Software Foundation\n",
		"PythonCore\\3.12\n",
		"Name: Python 3.12\n",
		"WindowedExecutablePath: C:\\Python312\\pythonw.exe\n",
	})
	assertNotContains(t, stdout, []string{"PyLauncher", "Astral"})
}

func TestDumpStatsCommand(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	dir := t.TempDir()
	var paths []string
	for _, f := range []struct{ name, body string }{
		{"b.txt", "Key Name:          HKEY_USERS\\S-1-5-18\r\n  Type:            REG_UNKNOWN\r\n"},
		{"a.txt", "Key Name:          HKEY_USERS\\.DEFAULT\r\n\r\n"},
	} {
		data, err := enc.Bytes([]byte(f.body))
		require.NoError(t, err)
		p := filepath.Join(dir, f.name)
		require.NoError(t, os.WriteFile(p, data, 0o600))
		paths = append(paths, p)
	}

	args := append([]string{"dump-stats", "--detail"}, paths...)
	stdout, stderr, code := runCLI(t, args...)
	require.Equal(t, 0, code, stderr)
	assertContains(t, stdout, []string{"FILENAME", "KEY COUNT", "a.txt", "b.txt", "REG_UNKNOWN at line 2"})
	assert.Less(t, strings.Index(stdout, "b.txt"), strings.Index(stdout, "a.txt"), "rows follow argument order")
}

func TestDumpStatsCommand_MissingFile(t *testing.T) {
	_, stderr, code := runCLI(t, "dump-stats", filepath.Join(t.TempDir(), "nope.txt"))
	assert.Equal(t, 1, code)
	assertContains(t, stderr, []string{"Error:"})
}

func TestVersionCommand(t *testing.T) {
	stdout, _, code := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assertContains(t, stdout, []string{"regwalk dev", "commit: none"})
}
