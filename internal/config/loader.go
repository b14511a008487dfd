package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "DOCSTORE"

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load(".env")

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optionally read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/docstore")

	// Ignore error if config file not found
	_ = v.ReadInConfig()

	var cfg Config

	// Server
	cfg.Server.Host = v.GetString("server_host")
	cfg.Server.Port = v.GetInt("server_port")
	cfg.Server.Env = v.GetString("server_env")
	cfg.Server.CORSOrigins = splitList(v.GetString("server_cors_origins"))

	// MongoDB
	cfg.Mongo.URI = v.GetString("mongo_uri")
	cfg.Mongo.Database = v.GetString("mongo_database")
	cfg.Mongo.AppName = v.GetString("mongo_app_name")
	cfg.Mongo.ConnectTimeout = v.GetDuration("mongo_connect_timeout")
	cfg.Mongo.ServerSelectionTimeout = v.GetDuration("mongo_server_selection_timeout")
	cfg.Mongo.OperationTimeout = v.GetDuration("mongo_operation_timeout")
	cfg.Mongo.DefaultCollection = v.GetString("mongo_default_collection")

	// Redis
	cfg.Redis.Host = v.GetString("redis_host")
	cfg.Redis.Port = v.GetInt("redis_port")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.Redis.DB = v.GetInt("redis_db")

	// Rate Limiting
	cfg.RateLimit.Enabled = v.GetBool("rate_limit_enabled")
	cfg.RateLimit.Max = v.GetInt("rate_limit_max")
	cfg.RateLimit.Window = v.GetDuration("rate_limit_window")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// Sentry
	cfg.Sentry.Enabled = v.GetBool("sentry_enabled")
	cfg.Sentry.DSN = v.GetString("sentry_dsn")
	cfg.Sentry.Environment = v.GetString("sentry_environment")
	cfg.Sentry.Release = v.GetString("sentry_release")
	cfg.Sentry.Debug = v.GetBool("sentry_debug")
	cfg.Sentry.SampleRate = v.GetFloat64("sentry_sample_rate")
	cfg.Sentry.TracesSampleRate = v.GetFloat64("sentry_traces_sample_rate")

	// Validate required fields
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_env", "development")
	v.SetDefault("server_cors_origins", "*")

	// MongoDB defaults
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "docstore")
	v.SetDefault("mongo_app_name", "docstore")
	v.SetDefault("mongo_connect_timeout", "10s")
	v.SetDefault("mongo_server_selection_timeout", "5s")
	v.SetDefault("mongo_operation_timeout", "15s")
	v.SetDefault("mongo_default_collection", "")

	// Redis defaults
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// Rate limiting defaults
	v.SetDefault("rate_limit_enabled", false)
	v.SetDefault("rate_limit_max", 100)
	v.SetDefault("rate_limit_window", "1m")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// Sentry defaults
	v.SetDefault("sentry_enabled", false)
	v.SetDefault("sentry_sample_rate", 1.0)
	v.SetDefault("sentry_traces_sample_rate", 0.1)
}

func validate(cfg *Config) error {
	if cfg.Mongo.URI == "" {
		return fmt.Errorf("mongo uri is required")
	}
	if cfg.Mongo.Database == "" {
		return fmt.Errorf("mongo database is required")
	}
	if cfg.Mongo.OperationTimeout <= 0 {
		return fmt.Errorf("mongo operation timeout must be positive")
	}
	if cfg.RateLimit.Enabled && (cfg.RateLimit.Max <= 0 || cfg.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limit max and window must be positive when enabled")
	}
	return nil
}

// splitList parses a comma separated value, dropping empty entries
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
