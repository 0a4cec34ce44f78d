package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-effect-desktop/internal/logger"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, BackendBild, cfg.Backend)
	assert.Equal(t, 3*time.Second, cfg.AutoInterval)
	assert.Equal(t, logger.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.HasSeed)
}

func TestEnvironmentOverrides(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(map[string]string{
		EnvBackend:         "OpenCV",
		EnvAutoInterval:    "1500",
		EnvLogLevel:        "debug",
		EnvJSONLogs:        "true",
		EnvSeed:            "42",
		EnvWindowWidth:     "800",
		EnvWindowHeight:    "600",
		EnvMonitorInterval: "0",
	}))
	require.NoError(t, err)
	assert.Equal(t, BackendOpenCV, cfg.Backend)
	assert.Equal(t, 1500*time.Millisecond, cfg.AutoInterval)
	assert.Equal(t, logger.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.JSONLogs)
	assert.True(t, cfg.HasSeed)
	assert.EqualValues(t, 42, cfg.Seed)
	assert.EqualValues(t, 800, cfg.WindowWidth)
	assert.Zero(t, cfg.MonitorInterval)
}

func TestDurationAcceptsGoSyntax(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(map[string]string{EnvAutoInterval: "250ms"}))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.AutoInterval)
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"backend":  {EnvBackend: "gimp"},
		"interval": {EnvAutoInterval: "soon"},
		"zero":     {EnvAutoInterval: "0"},
		"level":    {EnvLogLevel: "chatty"},
		"seed":     {EnvSeed: "x"},
		"window":   {EnvWindowWidth: "10"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fromLookup(lookupFrom(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("EFFECTS_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("EFFECTS_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("EFFECTS_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
