// Package config resolves where tasks are stored and how they are shown.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/abatilo/studytrack/internal/storage"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STUDYTRACK"

const (
	KeyDataFile = "data_file"
	KeyFormat   = "format"
	KeyColor    = "color"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// Config is the effective configuration for one run.
type Config struct {
	DataFile string `mapstructure:"data_file" yaml:"data_file"`
	Format   string `mapstructure:"format"    yaml:"format"`
	Color    bool   `mapstructure:"color"     yaml:"color"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataFile: storage.DefaultFile,
		Format:   "",
		Color:    true,
	}
}

// DefaultPath returns ~/.config/studytrack/config.yaml, or "" when there is no
// home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "studytrack", "config.yaml")
}

// Load merges, lowest precedence first: defaults, the YAML file, STUDYTRACK_*
// environment variables and changed flags.
//
// An empty path means DefaultPath, which may be absent. An explicit path
// must exist. flags may be nil; the recognized flags are --file, --format and
// --no-color.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetDefault(KeyDataFile, def.DataFile)
	v.SetDefault(KeyFormat, def.Format)
	v.SetDefault(KeyColor, def.Color)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := readFile(v, path); err != nil {
		return nil, err
	}

	if flags != nil {
		for key, name := range map[string]string{KeyDataFile: "file", KeyFormat: "format"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if flags != nil && flags.Changed("no-color") {
		if noColor, err := flags.GetBool("no-color"); err == nil && noColor {
			cfg.Color = false
		}
	}

	if _, err := storage.ParseFormat(cfg.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return nil
		}
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

const defaultHeader = `# studytrack configuration
# Every key can also be set with a STUDYTRACK_ environment variable,
# e.g. STUDYTRACK_DATA_FILE. Command-line flags win over both.
`

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists: %w", path, fs.ErrExist)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(defaultHeader), data...), filePerm)
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
