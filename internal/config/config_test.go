// internal/config/config_test.go
package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable the loader reads, restoring the
// original values when the test ends. Setenv registers the restore;
// the explicit Unsetenv matters because a set-but-empty variable still
// suppresses the struct defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"EXTRACTION_PORT", "PORT",
		"EXTRACTION_GIN_MODE", "GIN_MODE",
		"EXTRACTION_MAX_UPLOAD_MB", "MAX_UPLOAD_MB",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, int64(64), cfg.MaxUploadMB)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXTRACTION_PORT", "9090")
	t.Setenv("EXTRACTION_GIN_MODE", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.GinMode)
}
