package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	fs.String("provider", "ASF", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newFlags(t), nil)
	require.NoError(t, err)

	assert.Equal(t, "./config", cfg.DEM.ConfigDir)
	assert.Equal(t, filepath.Join("config", "get_dem.py.cfg"), filepath.Clean(cfg.DEM.SourceTablePath()))
	assert.Equal(t, "DEM", cfg.DEM.StagingDir)
	assert.Equal(t, "ASF", cfg.Orbit.Provider)
	assert.Equal(t, 4, cfg.Orbit.ESAPages)
	assert.Equal(t, 60*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 10, cfg.HTTP.Retries)
	assert.Equal(t, "https://s1qc.asf.alaska.edu/aux_poeorb/", cfg.Orbit.ASFURL)
	assert.True(t, cfg.Orbit.VerifyTLS())

	cfg.Orbit.Provider = "esa"
	assert.False(t, cfg.Orbit.VerifyTLS())
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("HYP3_HTTP_RETRIES", "3")
	t.Setenv("HYP3_DEM_CONFIG_DIR", "/opt/dem")

	cfg, err := Load(newFlags(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.HTTP.Retries)
	assert.Equal(t, "/opt/dem", cfg.DEM.ConfigDir)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("HYP3_LOG_LEVEL", "warn")
	t.Setenv("HYP3_ORBIT_PROVIDER", "ASF")

	fs := newFlags(t, "--log-level=debug", "--provider=ESA")
	cfg, err := Load(fs, map[string]string{"provider": "orbit.provider"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "ESA", cfg.Orbit.Provider)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hyp3.yaml")
	yaml := `
dem:
  staging_dir: tiles
  sources:
    SRTMGL1: s3://dem-bucket
orbit:
  esa_pages: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(newFlags(t, "--config="+path), nil)
	require.NoError(t, err)
	assert.Equal(t, "tiles", cfg.DEM.StagingDir)
	assert.Equal(t, 2, cfg.Orbit.ESAPages)
	// viper lower-cases map keys
	assert.Equal(t, "s3://dem-bucket", cfg.DEM.Sources["srtmgl1"])
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config="+filepath.Join(t.TempDir(), "nope.yaml")), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		DEM:   DEMConfig{StagingDir: "DEM"},
		Orbit: OrbitConfig{Provider: "nasa", ESAPages: 0},
		HTTP:  HTTPConfig{Timeout: 0, Retries: -1},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orbit.provider")
	assert.Contains(t, err.Error(), "orbit.esa_pages")
	assert.Contains(t, err.Error(), "http.timeout")
	assert.Contains(t, err.Error(), "http.retries")
}
