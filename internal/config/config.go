package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "STOREFRONT_"

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type BackendConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	Burst     int           `yaml:"burst"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	RedisAddr string `yaml:"redis_addr"`
	MySQLDSN  string `yaml:"mysql_dsn"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":50051",
			ShutdownTimeout: 5 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL:   "http://localhost:3000/api",
			Timeout:   10 * time.Second,
			RateLimit: 20,
			Burst:     5,
		},
		Storage: StorageConfig{
			Driver:    "badger",
			Path:      ".storefront",
			RedisAddr: "localhost:6379",
			MySQLDSN:  "root:root@tcp(localhost:3306)/storefront?parseTime=true",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads defaults, then the optional YAML file, then .env and
// STOREFRONT_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	str("HTTP_ADDR", &cfg.Server.HTTPAddr)
	str("GRPC_ADDR", &cfg.Server.GRPCAddr)
	str("BACKEND_URL", &cfg.Backend.BaseURL)
	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("STORAGE_PATH", &cfg.Storage.Path)
	str("REDIS_ADDR", &cfg.Storage.RedisAddr)
	str("MYSQL_DSN", &cfg.Storage.MySQLDSN)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	if v, ok := os.LookupEnv(envPrefix + "BACKEND_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sBACKEND_TIMEOUT: %w", envPrefix, err)
		}
		cfg.Backend.Timeout = d
	}
	if v, ok := os.LookupEnv(envPrefix + "BACKEND_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sBACKEND_RATE_LIMIT: %w", envPrefix, err)
		}
		cfg.Backend.RateLimit = f
	}
	return nil
}

func (c Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	switch c.Storage.Driver {
	case "badger":
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for badger")
		}
	case "redis", "mysql", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Backend.RateLimit < 0 || c.Backend.Burst < 0 {
		return errors.New("backend rate limit and burst must not be negative")
	}
	return nil
}
