// Package config loads compositor settings from a TOML file.
//
// A configuration file looks like:
//
//	[engine]
//	single_member = "release"
//
//	[log]
//	level = "debug"
//
// Every key is optional. Unknown keys are rejected so typos surface instead
// of being silently ignored.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/compositor/pkg/composite"
	errs "github.com/matzehuels/compositor/pkg/errors"
)

// appName names the directory under the user's config home.
const appName = "compositor"

// Config holds all settings read from the configuration file.
type Config struct {
	Engine Engine `toml:"engine"`
	Log    Log    `toml:"log"`
}

// Engine configures the composite engine.
type Engine struct {
	// SingleMember is "keep" or "release". See [composite.SingleMemberPolicy].
	SingleMember string `toml:"single_member"`
}

// Log configures CLI logging.
type Log struct {
	// Level is a charmbracelet/log level name such as "info" or "debug".
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Engine: Engine{SingleMember: composite.SingleMemberKeep.String()},
		Log:    Log{Level: log.InfoLevel.String()},
	}
}

// DefaultPath returns the configuration file location following the XDG
// convention (~/.config/compositor/config.toml).
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the configuration at path on top of [Default].
//
// An empty path means [DefaultPath]; a missing default file is not an error.
// An explicitly named file that does not exist returns FILE_NOT_FOUND.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	} else if err := errs.ValidatePath(path); err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
		return Default(), nil
	case os.IsNotExist(err):
		return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
	case err != nil:
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data on top of [Default] and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting can be converted to its runtime value.
func (c Config) Validate() error {
	if _, err := c.SingleMemberPolicy(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// SingleMemberPolicy parses [Engine.SingleMember].
func (c Config) SingleMemberPolicy() (composite.SingleMemberPolicy, error) {
	return composite.ParseSingleMemberPolicy(c.Engine.SingleMember)
}

// LogLevel parses [Log.Level].
func (c Config) LogLevel() (log.Level, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidConfig, err, "log level")
	}
	return level, nil
}

// EngineOptions returns the composite engine options for c.
func (c Config) EngineOptions(logger *log.Logger) (composite.Options, error) {
	policy, err := c.SingleMemberPolicy()
	if err != nil {
		return composite.Options{}, err
	}
	return composite.Options{SingleMember: policy, Logger: logger}, nil
}
