// ABOUTME: Layered configuration: defaults, YAML file, .env file, SPDXTV_* environment
// ABOUTME: The merged result is checked with struct validation tags

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps validation failures
var ErrInvalid = errors.New("config: invalid configuration")

// EnvPrefix prefixes every environment override
const EnvPrefix = "SPDXTV_"

type Config struct {
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	S3     S3Config     `yaml:"s3"`
	// Mapping is an optional tag table replacing the built-in one
	Mapping string `yaml:"mapping"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `yaml:"pretty"`
}

// StoreConfig selects the graph store. An empty path keeps the graph in
// memory only; otherwise it is the journal file.
type StoreConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint" validate:"omitempty,url"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PathStyle bool   `yaml:"path_style"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    32 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
		S3: S3Config{Region: "us-east-1"},
	}
}

// Load builds the configuration. path may be empty; a .env file in the
// working directory is read when present.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the validate struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return fmt.Errorf("%w: s3 access_key and secret_key must be set together", ErrInvalid)
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("LOG_LEVEL", &c.Log.Level)
	str("STORE_PATH", &c.Store.Path)
	str("SERVER_ADDR", &c.Server.Addr)
	str("MAPPING", &c.Mapping)
	str("S3_REGION", &c.S3.Region)
	str("S3_ENDPOINT", &c.S3.Endpoint)
	str("S3_ACCESS_KEY", &c.S3.AccessKey)
	str("S3_SECRET_KEY", &c.S3.SecretKey)

	if err := boolean("LOG_PRETTY", &c.Log.Pretty); err != nil {
		return err
	}
	if err := boolean("S3_PATH_STYLE", &c.S3.PathStyle); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SERVER_MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %sSERVER_MAX_BODY_BYTES: %w", EnvPrefix, err)
		}
		c.Server.MaxBodyBytes = n
	}
	return nil
}
