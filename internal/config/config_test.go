package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	homedir.DisableCache = true
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringArrayP("exclude", "e", nil, "")
	fs.String("source", "", "")
	fs.StringArray("hive", nil, "")
	fs.StringArray("reg", nil, "")
	fs.String("format", "text", "")
	fs.Int("max-frames", 0, "")
	fs.Bool("fail-on-error", false, "")
	fs.String("log-level", "", "")
	fs.String("log-file", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	isolateHome(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, DefaultSource(), cfg.Source)
	assert.Empty(t, cfg.Exclude)
	assert.Empty(t, cfg.File)
	assert.Zero(t, cfg.MaxFrames)
}

func TestLoad_File(t *testing.T) {
	isolateHome(t)
	path := writeFile(t, t.TempDir(), "cfg.yaml", `
source: hive
hives:
  - HKLM\SOFTWARE=/tmp/SOFTWARE
exclude:
  - Software\Classes
format: json
max_frames: 100
log:
  level: debug
  file: ~/regwalk.log
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, SourceHive, cfg.Source)
	assert.Equal(t, []string{`HKLM\SOFTWARE=/tmp/SOFTWARE`}, cfg.Hives)
	assert.Equal(t, []string{`Software\Classes`}, cfg.Exclude)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 100, cfg.MaxFrames)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NotContains(t, cfg.Log.File, "~")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_HomeFile(t *testing.T) {
	home := isolateHome(t)
	writeFile(t, home, DefaultFileName, "format: reg\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "reg", cfg.Format)
	assert.Equal(t, filepath.Join(home, DefaultFileName), cfg.File)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolateHome(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolateHome(t)
	path := writeFile(t, t.TempDir(), "cfg.json", `{"format": "json", "log": {"level": "info"}}`)
	t.Setenv("REGWALK_FORMAT", "reg")
	t.Setenv("REGWALK_LOG_LEVEL", "warn")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "reg", cfg.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	isolateHome(t)
	path := writeFile(t, t.TempDir(), "cfg.yaml", "format: json\nsource: hive\n")
	t.Setenv("REGWALK_SOURCE", "live")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{
		"--format", "reg",
		"--source", "reg",
		"--reg", "~/a.reg",
		"-e", `Software\A`, "-e", `Software\B, Inc`,
	}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "reg", cfg.Format)
	assert.Equal(t, SourceReg, cfg.Source)
	assert.Equal(t, []string{`Software\A`, `Software\B, Inc`}, cfg.Exclude)
	require.Len(t, cfg.RegFiles, 1)
	assert.Equal(t, "a.reg", filepath.Base(cfg.RegFiles[0]))
	assert.NotContains(t, cfg.RegFiles[0], "~")
}

func TestLoad_UnsetFlagsKeepFileValues(t *testing.T) {
	isolateHome(t)
	path := writeFile(t, t.TempDir(), "cfg.yaml", "format: json\n")
	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"live", Config{Source: SourceLive}, false},
		{"hive with mounts", Config{Source: SourceHive, Hives: []string{"HKLM=x"}}, false},
		{"hive without mounts", Config{Source: SourceHive}, true},
		{"reg with files", Config{Source: SourceReg, RegFiles: []string{"a.reg"}}, false},
		{"reg without files", Config{Source: SourceReg}, true},
		{"none", Config{}, true},
		{"unknown", Config{Source: "ftp"}, true},
		{"negative frames", Config{Source: SourceLive, MaxFrames: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
