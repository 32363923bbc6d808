// Package config resolves regwalk settings from defaults, an optional
// config file, REGWALK_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. REGWALK_FORMAT.
const EnvPrefix = "REGWALK"

// DefaultFileName is looked up in the home directory when no config file is
// given explicitly.
const DefaultFileName = ".regwalk.yaml"

// Sources of registry data.
const (
	SourceLive = "live"
	SourceHive = "hive"
	SourceReg  = "reg"
)

// Setting keys.
const (
	KeyExclude     = "exclude"
	KeySource      = "source"
	KeyHives       = "hives"
	KeyRegFiles    = "reg_files"
	KeyFormat      = "format"
	KeyMaxFrames   = "max_frames"
	KeyFailOnError = "fail_on_error"
	KeyLogLevel    = "log.level"
	KeyLogFile     = "log.file"
)

// FlagKeys maps command-line flag names to setting keys.
var FlagKeys = map[string]string{
	"exclude":       KeyExclude,
	"source":        KeySource,
	"hive":          KeyHives,
	"reg":           KeyRegFiles,
	"format":        KeyFormat,
	"max-frames":    KeyMaxFrames,
	"fail-on-error": KeyFailOnError,
	"log-level":     KeyLogLevel,
	"log-file":      KeyLogFile,
}

// Config is the resolved configuration.
type Config struct {
	Exclude     []string `mapstructure:"exclude"`
	Source      string   `mapstructure:"source"`
	Hives       []string `mapstructure:"hives"` // ROOT\Prefix=FILE mounts
	RegFiles    []string `mapstructure:"reg_files"`
	Format      string   `mapstructure:"format"`
	MaxFrames   int      `mapstructure:"max_frames"`
	FailOnError bool     `mapstructure:"fail_on_error"`
	Log         Log      `mapstructure:"log"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// Log holds logging settings.
type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DefaultSource is live on Windows and empty elsewhere, where a source
// has to be chosen explicitly.
func DefaultSource() string {
	if runtime.GOOS == "windows" {
		return SourceLive
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyExclude, []string{})
	v.SetDefault(KeySource, DefaultSource())
	v.SetDefault(KeyHives, []string{})
	v.SetDefault(KeyRegFiles, []string{})
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyMaxFrames, 0)
	v.SetDefault(KeyFailOnError, false)
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyLogFile, "")
}

// Load resolves the configuration. path names a config file; when empty,
// ~/.regwalk.yaml is read if it exists. flags, when non-nil, are bound by
// FlagKeys and override everything else once set on the command line.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	file, err := resolveFile(path)
	if err != nil {
		return nil, err
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = file
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveFile returns the config file to read, or "" when there is none.
// An explicit path must exist.
func resolveFile(path string) (string, error) {
	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return "", fmt.Errorf("config path: %w", err)
		}
		return expanded, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", nil
	}
	candidate := filepath.Join(home, DefaultFileName)
	if _, err := os.Stat(candidate); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return candidate, nil
}

func (c *Config) expandPaths() error {
	for i, f := range c.RegFiles {
		p, err := homedir.Expand(f)
		if err != nil {
			return fmt.Errorf("reg file %q: %w", f, err)
		}
		c.RegFiles[i] = p
	}
	if c.Log.File != "" {
		p, err := homedir.Expand(c.Log.File)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		c.Log.File = p
	}
	return nil
}

// Validate checks the source selection against the files it needs.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceLive:
	case SourceHive:
		if len(c.Hives) == 0 {
			return errors.New("source hive needs at least one --hive ROOT\\Prefix=FILE mount")
		}
	case SourceReg:
		if len(c.RegFiles) == 0 {
			return errors.New("source reg needs at least one --reg FILE")
		}
	case "":
		return errors.New("no registry source: pass --source hive with --hive, or --source reg with --reg")
	default:
		return fmt.Errorf("unknown source %q (want live, hive or reg)", c.Source)
	}
	if c.MaxFrames < 0 {
		return fmt.Errorf("max_frames must not be negative, got %d", c.MaxFrames)
	}
	return nil
}
