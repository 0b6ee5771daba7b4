// Package config provides configuration loading, defaults, and validation for
// the phase-diagram toolkit.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/turtacn/phdg/pkg/errors"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "PHDG"

// Sentinel errors; every Load failure wraps exactly one of them.
var (
	ErrConfigFileNotFound = errors.New(errors.ErrCodeConfigInvalid, "config file not found")
	ErrConfigParseError   = errors.New(errors.ErrCodeConfigInvalid, "config file could not be parsed")
	ErrConfigValidation   = errors.New(errors.ErrCodeConfigInvalid, "config validation failed")
)

// envKeys are the scalar settings that may be supplied by environment alone,
// e.g. PHDG_STORAGE_MINIO_ENDPOINT.  List-valued settings come from the file.
var envKeys = []string{
	"log.level", "log.format", "log.output",
	"metrics.enabled", "metrics.namespace", "metrics.textfile",
	"storage.minio.endpoint", "storage.minio.access_key", "storage.minio.secret_key",
	"storage.minio.use_ssl", "storage.minio.region",
	"classifier.workers",
	"system.base_dir",
	"plots.output_dir", "plots.phase_diagram.mode",
}

// SearchPaths is the lookup order used when no explicit config path is given.
func SearchPaths() []string {
	paths := []string{"phdg.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".phdg", "config.yaml"))
	}
	return append(paths, "/etc/phdg/config.yaml")
}

// newViper builds a pre-configured Viper instance: YAML file type, PHDG_ env
// prefix, automatic env binding, and a key replacer that maps "." → "_" so
// that nested keys like "storage.minio.endpoint" resolve to
// "PHDG_STORAGE_MINIO_ENDPOINT".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	return v
}

type loadOptions struct {
	path     string
	required bool
}

// LoadOption customises Load.
type LoadOption func(*loadOptions)

// WithConfigPath loads the given file.  A missing file is an error.
func WithConfigPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
		o.required = path != ""
	}
}

// Load reads the YAML config, merges any PHDG_* environment variable
// overrides, applies defaults for unset fields, and validates the result.
// Without WithConfigPath it tries SearchPaths in order and falls back to
// environment and defaults when none exists.
func Load(opts ...LoadOption) (*Config, error) {
	o := loadOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	path := o.path
	if path == "" {
		path = firstExisting(SearchPaths())
	} else if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(ErrConfigFileNotFound, errors.ErrCodeConfigInvalid, "cannot open config").
			WithDetail(path)
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(ErrConfigParseError, errors.ErrCodeConfigInvalid, err.Error()).
				WithDetail(path)
		}
	}

	cfg, err := unmarshalAndFinalize(v)
	if err != nil {
		return nil, err
	}
	resolveBaseDir(cfg, path)
	return cfg, nil
}

// Path returns the file Load would read for the given explicit path, or ""
// when it would use environment and defaults only.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return firstExisting(SearchPaths())
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(ErrConfigParseError, errors.ErrCodeConfigInvalid, err.Error())
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveBaseDir makes System.BaseDir absolute relative to the config file,
// so table paths in a config mean the same thing from any working directory.
func resolveBaseDir(cfg *Config, configPath string) {
	root := "."
	if configPath != "" {
		root = filepath.Dir(configPath)
	}
	switch {
	case cfg.System.BaseDir == "":
		cfg.System.BaseDir = root
	case !filepath.IsAbs(cfg.System.BaseDir):
		cfg.System.BaseDir = filepath.Join(root, cfg.System.BaseDir)
	}
}

//Personal.AI order the ending
