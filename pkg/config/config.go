package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env    string `yaml:"env"`
	Server struct {
		Port int `yaml:"port" validate:"gt=0,lte=65535"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level" validate:"oneof=DEBUG INFO WARN ERROR"`
	} `yaml:"log"`
	Database struct {
		Driver       string `yaml:"driver" validate:"oneof=mysql postgres sqlite"`
		URL          string `yaml:"url" validate:"required"`
		MaxOpenConns int    `yaml:"max_open_conns" validate:"gte=0"`
		MaxIdleConns int    `yaml:"max_idle_conns" validate:"gte=0"`
		AutoMigrate  bool   `yaml:"auto_migrate"`
	} `yaml:"database"`
	Redis struct {
		Enabled    bool   `yaml:"enabled"`
		Host       string `yaml:"host" validate:"required_if=Enabled true"`
		Port       int    `yaml:"port" validate:"gt=0,lte=65535"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db" validate:"gte=0"`
		TTLSeconds int    `yaml:"ttl_seconds" validate:"gte=0"`
	} `yaml:"redis"`
	Firebase struct {
		ProjectID   string `yaml:"project_id"`
		ClientEmail string `yaml:"client_email" validate:"omitempty,email"`
		PrivateKey  string `yaml:"private_key"`
	} `yaml:"firebase"`
	Auth struct {
		RequireToken bool `yaml:"require_token"`
	} `yaml:"auth"`
	RateLimit struct {
		PerMinute int `yaml:"per_minute" validate:"gte=0"`
		Burst     int `yaml:"burst" validate:"gte=0"`
	} `yaml:"rate_limit"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{Env: "development"}
	cfg.Server.Port = 8080
	cfg.Log.Level = "INFO"
	cfg.Database.Driver = "sqlite"
	cfg.Database.URL = "file:users.db?_pragma=foreign_keys(1)"
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleConns = 5
	cfg.Database.AutoMigrate = true
	cfg.Redis.Host = "localhost"
	cfg.Redis.Port = 6379
	cfg.Redis.TTLSeconds = 300
	cfg.RateLimit.PerMinute = 100
	cfg.RateLimit.Burst = 10
	return cfg
}

func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case os.IsNotExist(err):
		// env-only deployments
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.Log.Level = strings.ToUpper(cfg.Log.Level)
	cfg.Firebase.PrivateKey = NormalizePrivateKey(cfg.Firebase.PrivateKey)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Auth.RequireToken && cfg.Firebase.ProjectID == "" {
		return nil, fmt.Errorf("auth.require_token needs firebase.project_id")
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// NormalizePrivateKey turns literal "\n" sequences (as stored in env files) into newlines.
func NormalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Env, "ENV")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Redis.Host, "REDIS_HOST")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Firebase.ProjectID, "FIREBASE_PROJECT_ID")
	setString(&cfg.Firebase.ClientEmail, "FIREBASE_CLIENT_EMAIL")
	setString(&cfg.Firebase.PrivateKey, "FIREBASE_PRIVATE_KEY")

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.Server.Port, "PORT"},
		{&cfg.Database.MaxOpenConns, "DATABASE_MAX_OPEN_CONNS"},
		{&cfg.Redis.Port, "REDIS_PORT"},
		{&cfg.Redis.DB, "REDIS_DB"},
		{&cfg.Redis.TTLSeconds, "REDIS_TTL_SECONDS"},
		{&cfg.RateLimit.PerMinute, "RATE_LIMIT_PER_MINUTE"},
		{&cfg.RateLimit.Burst, "RATE_LIMIT_BURST"},
	}
	for _, i := range ints {
		if err := setInt(i.dst, i.key); err != nil {
			return err
		}
	}

	bools := []struct {
		dst *bool
		key string
	}{
		{&cfg.Database.AutoMigrate, "DATABASE_AUTO_MIGRATE"},
		{&cfg.Redis.Enabled, "REDIS_ENABLED"},
		{&cfg.Auth.RequireToken, "AUTH_REQUIRE_TOKEN"},
	}
	for _, b := range bools {
		if err := setBool(b.dst, b.key); err != nil {
			return err
		}
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s value: %w", key, err)
	}
	*dst = b
	return nil
}
