package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
	DefaultSecretKey     = "1112223333"
)

type Config struct {
	Server struct {
		Port       string `yaml:"port"`
		SecretKey  string `yaml:"secret_key"`
		SessionTTL string `yaml:"session_ttl"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Admin struct {
		Username     string `yaml:"username"`
		Password     string `yaml:"password"`
		PasswordHash string `yaml:"password_hash"`
	} `yaml:"admin"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads YAML config from path, then applies environment overrides and defaults.
// A missing file is not an error; the service then runs on defaults and env alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Server.Port, "PORT")
	setFromEnv(&cfg.Server.SecretKey, "SECRET_KEY")
	setFromEnv(&cfg.Postgres.URL, "DATABASE_URL")
	setFromEnv(&cfg.Redis.Addr, "REDIS_ADDR")
	setFromEnv(&cfg.Redis.Password, "REDIS_PASSWORD")
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if db, err := strconv.Atoi(raw); err == nil {
			cfg.Redis.DB = db
		}
	}
	setFromEnv(&cfg.Admin.Username, "ADMIN_USERNAME")
	setFromEnv(&cfg.Admin.Password, "ADMIN_PASSWORD")
	setFromEnv(&cfg.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	setFromEnv(&cfg.Log.Level, "LOG_LEVEL")
}

func applyDefaults(cfg *Config) {
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = DefaultAdminUsername
	}
	if cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
		cfg.Admin.Password = DefaultAdminPassword
	}
	if cfg.Server.SecretKey == "" {
		cfg.Server.SecretKey = DefaultSecretKey
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
