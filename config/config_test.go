package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anujdecoder/postgraph/mutate"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 1024, c.MaxConnections)
	assert.True(t, c.Playground)
	assert.Equal(t, "/metrics", c.MetricsPath)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, mutate.Lenient, c.Policy())
	assert.Equal(t, "mem://users/id", c.Store.Users)
	assert.Equal(t, "mem://posts/id", c.Store.Posts)
	assert.Equal(t, "mem://comments/id", c.Store.Comments)
	assert.Equal(t, 8, c.Store.MaxConflictRetries)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("POSTGRAPH_HTTP_ADDR", ":9999")
	t.Setenv("POSTGRAPH_CONSISTENCY", "strict")
	t.Setenv("POSTGRAPH_STORE_USERS_URL", "mongo://blog/users?id_field=id")
	t.Setenv("POSTGRAPH_PLAYGROUND", "false")

	c, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, mutate.Strict, c.Policy())
	assert.Equal(t, "mongo://blog/users?id_field=id", c.Store.Users)
	assert.False(t, c.Playground)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":7000"
log_format: console
store:
  max_conflict_retries: 3
`), 0o600))

	c, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", c.HTTPAddr)
	assert.Equal(t, "console", c.LogFormat)
	assert.Equal(t, 3, c.Store.MaxConflictRetries)
	assert.Equal(t, "mem://posts/id", c.Store.Posts)

	_, err = Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		c, err := Load(viper.New(), "")
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty addr", func(c *Config) { c.HTTPAddr = "" }, true},
		{"negative connections", func(c *Config) { c.MaxConnections = -1 }, true},
		{"unlimited connections", func(c *Config) { c.MaxConnections = 0 }, false},
		{"relative metrics path", func(c *Config) { c.MetricsPath = "metrics" }, true},
		{"metrics disabled", func(c *Config) { c.MetricsPath = "" }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"bad consistency", func(c *Config) { c.Consistency = "eventual" }, true},
		{"missing url", func(c *Config) { c.Store.Comments = "" }, true},
		{"negative retries", func(c *Config) { c.Store.MaxConflictRetries = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
