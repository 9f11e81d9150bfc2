// Package config loads tool configuration from defaults, an optional
// hyp3.yaml file, a .env file, HYP3_* environment variables and command
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "HYP3"

// Config holds all tool configuration.
type Config struct {
	DEM   DEMConfig   `mapstructure:"dem"`
	Orbit OrbitConfig `mapstructure:"orbit"`
	HTTP  HTTPConfig  `mapstructure:"http"`
	Log   LogConfig   `mapstructure:"log"`
}

type DEMConfig struct {
	ConfigDir   string            `mapstructure:"config_dir"`
	SourceTable string            `mapstructure:"source_table"`
	Sources     map[string]string `mapstructure:"sources"`
	StagingDir  string            `mapstructure:"staging_dir"`
	WorkDir     string            `mapstructure:"work_dir"`
}

// SourceTablePath returns the explicit table path or the default one inside
// the config directory.
func (d DEMConfig) SourceTablePath() string {
	if d.SourceTable != "" {
		return d.SourceTable
	}
	return filepath.Join(d.ConfigDir, "get_dem.py.cfg")
}

type OrbitConfig struct {
	Provider         string `mapstructure:"provider"`
	Dir              string `mapstructure:"dir"`
	ASFURL           string `mapstructure:"asf_url"`
	ASFRestitutedURL string `mapstructure:"asf_restituted_url"`
	ESAURL           string `mapstructure:"esa_url"`
	ESARestitutedURL string `mapstructure:"esa_restituted_url"`
	ESAPages         int    `mapstructure:"esa_pages"`
	ASFVerifyTLS     bool   `mapstructure:"asf_verify_tls"`
	ESAVerifyTLS     bool   `mapstructure:"esa_verify_tls"`
}

// VerifyTLS reports whether certificates are checked for the selected
// provider.
func (o OrbitConfig) VerifyTLS() bool {
	if strings.EqualFold(o.Provider, "ESA") {
		return o.ESAVerifyTLS
	}
	return o.ASFVerifyTLS
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dem.config_dir", "./config")
	v.SetDefault("dem.source_table", "")
	v.SetDefault("dem.staging_dir", "DEM")
	v.SetDefault("dem.work_dir", ".")

	v.SetDefault("orbit.provider", "ASF")
	v.SetDefault("orbit.dir", ".")
	v.SetDefault("orbit.asf_url", "https://s1qc.asf.alaska.edu/aux_poeorb/")
	v.SetDefault("orbit.asf_restituted_url", "https://s1qc.asf.alaska.edu/aux_resorb/")
	v.SetDefault("orbit.esa_url", "https://qc.sentinel1.eo.esa.int/aux_poeorb/")
	v.SetDefault("orbit.esa_restituted_url", "https://qc.sentinel1.eo.esa.int/aux_resorb/")
	v.SetDefault("orbit.esa_pages", 4)
	v.SetDefault("orbit.asf_verify_tls", true)
	v.SetDefault("orbit.esa_verify_tls", false)

	v.SetDefault("http.timeout", 60*time.Second)
	v.SetDefault("http.retries", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// AddFlags registers the flags every tool shares.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Config file (default ./hyp3.yaml if present)")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.String("log-format", "console", "Log format: console or json")
	fs.Duration("http-timeout", 60*time.Second, "Per-request HTTP timeout")
	fs.Int("http-retries", 10, "HTTP retry budget")
}

var sharedFlags = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"http-timeout": "http.timeout",
	"http-retries": "http.retries",
}

// Load builds the configuration. bindings maps tool-specific flag names to
// config keys; the shared flags from AddFlags are bound automatically.
func Load(fs *pflag.FlagSet, bindings map[string]string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	configFile := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("hyp3")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// HYP3_DEM_CONFIG_DIR -> dem.config_dir
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range sharedFlags {
			if err := bindFlag(v, fs, name, key); err != nil {
				return nil, err
			}
		}
		for name, key := range bindings {
			if err := bindFlag(v, fs, name, key); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func bindFlag(v *viper.Viper, fs *pflag.FlagSet, name, key string) error {
	f := fs.Lookup(name)
	if f == nil {
		return nil
	}
	if err := v.BindPFlag(key, f); err != nil {
		return fmt.Errorf("bind flag %s: %w", name, err)
	}
	return nil
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToUpper(c.Orbit.Provider) {
	case "ASF", "ESA":
	default:
		errs = append(errs, fmt.Sprintf("orbit.provider must be ASF or ESA, got %q", c.Orbit.Provider))
	}
	if c.Orbit.ESAPages <= 0 {
		errs = append(errs, "orbit.esa_pages must be positive")
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, "http.timeout must be positive")
	}
	if c.HTTP.Retries < 0 {
		errs = append(errs, "http.retries must not be negative")
	}
	if c.DEM.StagingDir == "" {
		errs = append(errs, "dem.staging_dir is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
