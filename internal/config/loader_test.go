package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "docstore", cfg.Mongo.Database)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
	assert.Equal(t, 15*time.Second, cfg.Mongo.OperationTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCSTORE_MONGO_URI", "mongodb://db.internal:27018")
	t.Setenv("DOCSTORE_MONGO_DATABASE", "inventory")
	t.Setenv("DOCSTORE_MONGO_OPERATION_TIMEOUT", "3s")
	t.Setenv("DOCSTORE_SERVER_PORT", "9090")
	t.Setenv("DOCSTORE_SERVER_ENV", "production")
	t.Setenv("DOCSTORE_SERVER_CORS_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db.internal:27018", cfg.Mongo.URI)
	assert.Equal(t, "inventory", cfg.Mongo.Database)
	assert.Equal(t, 3*time.Second, cfg.Mongo.OperationTimeout)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Mongo: MongoConfig{URI: "mongodb://localhost", Database: "db", OperationTimeout: time.Second},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, validate(&cfg))
	})

	t.Run("missing database", func(t *testing.T) {
		cfg := valid()
		cfg.Mongo.Database = ""
		assert.Error(t, validate(&cfg))
	})

	t.Run("missing uri", func(t *testing.T) {
		cfg := valid()
		cfg.Mongo.URI = ""
		assert.Error(t, validate(&cfg))
	})

	t.Run("rate limit needs a window", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit = RateLimitConfig{Enabled: true, Max: 10}
		assert.Error(t, validate(&cfg))
	})
}

func TestAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", ServerConfig{Host: "0.0.0.0", Port: 8080}.Addr())
	assert.Equal(t, "localhost:6379", RedisConfig{Host: "localhost", Port: 6379}.Addr())
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , "))
	assert.Equal(t, []string{"a", "b"}, splitList("a,b"))
}
