package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default(ENV_DEV)

	assert.Equal(t, ENV_DEV, cfg.Env)
	assert.Equal(t, ELEVATION_SAMPLES, cfg.Elevation.Samples)
	assert.Equal(t, ELEVATION_TIMEOUT_SECONDS*time.Second, cfg.Elevation.Timeout)
	assert.Equal(t, ELEVATION_PATH_ENCODING_PLAIN, cfg.Elevation.PathEncoding)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.NATS.Enabled)
	assert.True(t, cfg.Region.Editable)
	assert.True(t, cfg.Region.Draggable)
	assert.Equal(t, REGION_NORTH, cfg.Region.North)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PROJECT_ROOT", t.TempDir())
	t.Setenv("PROFILE_SERVER_ELEVATION_SAMPLES", "12")
	t.Setenv("PROFILE_SERVER_ELEVATION_TIMEOUT", "3s")
	t.Setenv("PROFILE_SERVER_SERVER_ADDR", ":9090")

	cfg, err := Load(ENV_DEV)

	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Elevation.Samples)
	assert.Equal(t, 3*time.Second, cfg.Elevation.Timeout)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoad_ProdRequiresAPIKey(t *testing.T) {
	t.Setenv("PROJECT_ROOT", t.TempDir())

	_, err := Load(ENV_PROD)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "elevation.api_key is required in prod")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Unknown env", func(c *Config) { c.Env = "staging" }, "env must be"},
		{"Too few samples", func(c *Config) { c.Elevation.Samples = 1 }, "elevation.samples must be at least 2"},
		{"Bad encoding", func(c *Config) { c.Elevation.PathEncoding = "wkt" }, "elevation.path_encoding"},
		{"Inverted region", func(c *Config) { c.Region.North, c.Region.South = c.Region.South, c.Region.North }, "north > south"},
		{"Redis without address", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "redis.addr"},
		{"Negative refresher", func(c *Config) { c.Refresher.Interval = -time.Second }, "refresher.interval"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default(ENV_DEV)
			test.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), test.wantErr)
		})
	}
}

func TestGetResourcePath(t *testing.T) {
	t.Setenv("PROJECT_ROOT", "/srv/profile-server")

	assert.Equal(t, "/srv/profile-server/resources/data2.json", GetResourcePath(SEED_PROFILE_RESOURCE))
}
