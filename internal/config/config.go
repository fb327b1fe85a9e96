package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	MongoURI            string   `koanf:"mongo_url" validate:"required"`
	MongoDatabase       string   `koanf:"mongo_db" validate:"required"`
	Port                string   `koanf:"port" validate:"required,numeric"`
	Environment         string   `koanf:"env" validate:"required"`
	AllowedOrigins      []string `koanf:"-"`
	RedisURI            string   `koanf:"redis_uri"`
	CloudinaryName      string   `koanf:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string   `koanf:"cloudinary_api_key"`
	CloudinaryAPISecret string   `koanf:"cloudinary_api_secret"`

	// Redis-backed per-IP limiter; only active when RedisURI is set.
	RateLimitMaxRequests   int `koanf:"rate_limit_max_requests" validate:"min=1"`
	RateLimitWindowSeconds int `koanf:"rate_limit_window_seconds" validate:"min=1"`

	RawAllowedOrigins string `koanf:"allowed_origins"`
	LegacyMongoURI    string `koanf:"mongodb_uri"`
}

// envKeys maps the process environment onto koanf keys. Variables not listed
// here, and blank values, are ignored.
var envKeys = map[string]string{
	"MONGO_URL":                 "mongo_url",
	"MONGODB_URI":               "mongodb_uri",
	"MONGO_DB":                  "mongo_db",
	"PORT":                      "port",
	"ENV":                       "env",
	"ALLOWED_ORIGINS":           "allowed_origins",
	"REDIS_URI":                 "redis_uri",
	"CLOUDINARY_CLOUD_NAME":     "cloudinary_cloud_name",
	"CLOUDINARY_API_KEY":        "cloudinary_api_key",
	"CLOUDINARY_API_SECRET":     "cloudinary_api_secret",
	"RATE_LIMIT_MAX_REQUESTS":   "rate_limit_max_requests",
	"RATE_LIMIT_WINDOW_SECONDS": "rate_limit_window_seconds",
}

var defaults = map[string]interface{}{
	"mongo_db":                  "surveyApp",
	"port":                      "8000",
	"env":                       "development",
	"allowed_origins":           "*",
	"rate_limit_max_requests":   100,
	"rate_limit_window_seconds": 120,
}

// Load reads configuration from the environment. Call godotenv.Load first if
// a .env file should be honoured.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		value = strings.TrimSpace(value)
		if value == "" {
			return "", nil
		}
		return envKeys[key], value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// MONGODB_URI is accepted for deployments that still use the old name.
	if cfg.MongoURI == "" {
		cfg.MongoURI = cfg.LegacyMongoURI
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.AllowedOrigins = parseOrigins(cfg.RawAllowedOrigins)
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RedisEnabled reports whether a Redis URI was configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisURI) != ""
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
