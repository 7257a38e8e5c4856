package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TURNUP_API_URL", "")
	t.Setenv("TOKEN_STORE", "")
	t.Setenv("TURNUP_APP_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "ws://localhost:8000/api/v1", cfg.API.WebSocketURL)
	assert.Equal(t, 30*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, StoreBolt, cfg.Session.Store)
	assert.NotEmpty(t, cfg.Session.TokenFile)
	assert.Empty(t, cfg.Places.GoogleMapsAPIKey)
	assert.Equal(t, "http://localhost:5173", cfg.App.Origin)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TURNUP_API_URL", "https://api.turnupspot.test/api/v1")
	t.Setenv("TOKEN_STORE", "Redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_BURST", "not-a-number")
	t.Setenv("TURNUP_APP_URL", "https://turnupspot.test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "wss://api.turnupspot.test/api/v1", cfg.API.WebSocketURL)
	assert.Equal(t, StoreRedis, cfg.Session.Store)
	assert.Equal(t, "redis://cache:6379/1", cfg.Session.RedisURL)
	assert.Equal(t, 5*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, 2.5, cfg.API.RateLimitRPS)
	assert.Equal(t, 20, cfg.API.RateBurst, "invalid integers fall back to the default")
	assert.Equal(t, "https://turnupspot.test", cfg.App.Origin)
}

func TestLoad_TOMLFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "turnup.toml")
	content := `
[api]
base_url = "http://file.example/api/v1"
ws_url = "ws://file.example/ws"

[session]
store = "memory"

[places]
google_maps_api_key = "from-file"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TURNUP_API_URL", "")
	t.Setenv("TURNUP_WS_URL", "")
	t.Setenv("TOKEN_STORE", "")
	t.Setenv("GOOGLE_MAPS_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://file.example/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "ws://file.example/ws", cfg.API.WebSocketURL)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
	assert.Equal(t, "from-env", cfg.Places.GoogleMapsAPIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("relative api url", func(t *testing.T) {
		cfg := Defaults()
		cfg.API.BaseURL = "/api/v1"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown store", func(t *testing.T) {
		cfg := Defaults()
		cfg.Session.Store = "sqlite"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sqlite")
	})

	t.Run("bolt without file", func(t *testing.T) {
		cfg := Defaults()
		cfg.Session.TokenFile = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("relative app origin", func(t *testing.T) {
		cfg := Defaults()
		cfg.App.Origin = "turnupspot.test"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TURNUP_APP_URL")
	})

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Defaults().Validate())
	})
}
