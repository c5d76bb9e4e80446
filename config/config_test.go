package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	v "github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setSecrets(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestSetupDefaults(t *testing.T) {
	v.Reset()
	t.Chdir(t.TempDir())
	setSecrets(t)

	require.NoError(t, Setup(nil))

	assert.Equal(t, "info", v.GetString("app.log_level"))
	assert.Equal(t, 8080, v.GetInt("host.port"))
	assert.Equal(t, 15*time.Minute, v.GetDuration("jwt.access_ttl"))
	assert.Equal(t, 720*time.Hour, v.GetDuration("jwt.refresh_ttl"))
	assert.Equal(t, "sqlite", v.GetString("database.driver"))
	assert.Equal(t, "memory", v.GetString("cache.driver"))
	assert.Equal(t, "access-secret", v.GetString("jwt.access_secret"))
}

func TestSetupMissingSecrets(t *testing.T) {
	v.Reset()
	t.Chdir(t.TempDir())

	err := Setup(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
}

func TestSetupSameSecrets(t *testing.T) {
	v.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("JWT_ACCESS_SECRET", "same")
	t.Setenv("JWT_REFRESH_SECRET", "same")

	assert.Error(t, Setup(nil))
}

func TestSetupEnvOverrides(t *testing.T) {
	v.Reset()
	t.Chdir(t.TempDir())
	setSecrets(t)
	t.Setenv("CACHE_DRIVER", "nope")

	assert.EqualError(t, Setup(nil), "invalid cache driver provided")
}

func TestSetupConfigFile(t *testing.T) {
	v.Reset()
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
log_level = "debug"

[jwt]
access_secret = "a"
refresh_secret = "b"
access_ttl = "5m"

[database]
driver = "postgres"
dsn = "postgres://localhost/auth"
`), 0o600))

	require.NoError(t, Setup([]string{"--config", path}))

	assert.Equal(t, "debug", v.GetString("app.log_level"))
	assert.Equal(t, 5*time.Minute, v.GetDuration("jwt.access_ttl"))
	assert.Equal(t, "postgres", v.GetString("database.driver"))
}

func TestSetupMissingExplicitConfigFile(t *testing.T) {
	v.Reset()
	t.Chdir(t.TempDir())
	setSecrets(t)

	assert.Error(t, Setup([]string{"--config", "does-not-exist.toml"}))
}

func TestSetupLogLevelFlag(t *testing.T) {
	v.Reset()
	t.Chdir(t.TempDir())
	setSecrets(t)

	require.NoError(t, Setup([]string{"--log-level", "warn"}))
	assert.Equal(t, "warn", v.GetString("app.log_level"))

	v.Reset()
	assert.Error(t, Setup([]string{"--log-level", "loud"}))
}

func TestSetupTTLOrder(t *testing.T) {
	v.Reset()
	t.Chdir(t.TempDir())
	setSecrets(t)
	t.Setenv("JWT_ACCESS_TTL", "48h")
	t.Setenv("JWT_REFRESH_TTL", "24h")

	assert.Error(t, Setup(nil))
}

func TestSetupLogger(t *testing.T) {
	v.Reset()
	v.Set("app.log_level", "debug")

	require.NoError(t, SetupLogger())
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	v.Set("app.log_level", "nonsense")
	assert.Error(t, SetupLogger())
}

func TestSetupArgonParams(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		ok   bool
	}{
		{"defaults", nil, true},
		{"zero iterations", map[string]string{"SECURITY_ARGON_ITERATIONS": "0"}, false},
		{"negative iterations", map[string]string{"SECURITY_ARGON_ITERATIONS": "-1"}, false},
		{"zero parallelism", map[string]string{"SECURITY_ARGON_PARALLELISM": "0"}, false},
		{"parallelism overflows uint8", map[string]string{"SECURITY_ARGON_PARALLELISM": "256"}, false},
		{"max parallelism", map[string]string{"SECURITY_ARGON_PARALLELISM": "255", "SECURITY_ARGON_MEMORY": "2040"}, true},
		{"memory below 8 per thread", map[string]string{"SECURITY_ARGON_PARALLELISM": "4", "SECURITY_ARGON_MEMORY": "31"}, false},
		{"memory at 8 per thread", map[string]string{"SECURITY_ARGON_PARALLELISM": "4", "SECURITY_ARGON_MEMORY": "32"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.Reset()
			t.Chdir(t.TempDir())
			setSecrets(t)

			for k, val := range tt.env {
				t.Setenv(k, val)
			}

			err := Setup(nil)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, "security.argon")
			}
		})
	}
}
