// Package config loads patomove's YAML configuration. Environment variables
// of the form ${VAR} are expanded before parsing, and a small set of
// PATOMOVE_* variables override file values so containerized deployments can
// run without a config file at all.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServiceConfig holds HTTP server parameters.
type ServiceConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// StorageConfig selects and parameterizes the persistent store backend.
type StorageConfig struct {
	Driver      string `yaml:"driver"` // memory|sqlite|postgres
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// BlobConfig selects and parameterizes the genome file store.
type BlobConfig struct {
	Driver    string `yaml:"driver"` // fs|s3|memory
	Root      string `yaml:"root"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// PipelineConfig points at the external analysis pipeline.
type PipelineConfig struct {
	BaseURL     string `yaml:"base_url"`
	CallbackURL string `yaml:"callback_url"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Mode string `yaml:"mode"` // development|production
}

// Config is the root configuration document.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Storage  StorageConfig  `yaml:"storage"`
	Blob     BlobConfig     `yaml:"blob"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
}

func defaults() Config {
	return Config{
		Service: ServiceConfig{Port: 8080},
		Storage: StorageConfig{Driver: "sqlite", SQLitePath: "patomove.db"},
		Blob:    BlobConfig{Driver: "fs", Root: "storage"},
		Logging: LoggingConfig{Mode: "production"},
	}
}

// Parse reads configuration from YAML bytes, expanding ${VAR} references,
// applying PATOMOVE_* overrides, and validating the result.
func Parse(data []byte) (Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	conf := defaults()
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return Config{}, fmt.Errorf("parse configuration: %w", err)
	}
	applyEnvOverrides(&conf)
	if err := conf.validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

// Load reads and parses the configuration file at path. An empty path yields
// defaults plus environment overrides.
func Load(path string) (Config, error) {
	if path == "" {
		conf := defaults()
		applyEnvOverrides(&conf)
		if err := conf.validate(); err != nil {
			return Config{}, err
		}
		return conf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read configuration file: %w", err)
	}
	return Parse(data)
}

func applyEnvOverrides(conf *Config) {
	if v := os.Getenv("PATOMOVE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			conf.Service.Port = port
		}
	}
	setIfEnv := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setIfEnv(&conf.Storage.Driver, "PATOMOVE_STORAGE_DRIVER")
	setIfEnv(&conf.Storage.SQLitePath, "PATOMOVE_SQLITE_PATH")
	setIfEnv(&conf.Storage.PostgresDSN, "PATOMOVE_POSTGRES_DSN")
	setIfEnv(&conf.Blob.Driver, "PATOMOVE_BLOB_DRIVER")
	setIfEnv(&conf.Blob.Root, "PATOMOVE_BLOB_ROOT")
	setIfEnv(&conf.Blob.Bucket, "PATOMOVE_BLOB_BUCKET")
	setIfEnv(&conf.Blob.Region, "PATOMOVE_BLOB_REGION")
	setIfEnv(&conf.Blob.Endpoint, "PATOMOVE_BLOB_ENDPOINT")
	setIfEnv(&conf.Pipeline.BaseURL, "PATOMOVE_PIPELINE_URL")
	setIfEnv(&conf.Pipeline.CallbackURL, "PATOMOVE_PIPELINE_CALLBACK_URL")
	setIfEnv(&conf.Logging.Mode, "PATOMOVE_LOG_MODE")
}

func (c Config) validate() error {
	if c.Service.Port < 0 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port %d (must be 0-65535)", c.Service.Port)
	}
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid storage driver %q (memory|sqlite|postgres)", c.Storage.Driver)
	}
	switch c.Blob.Driver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("invalid blob driver %q (fs|s3|memory)", c.Blob.Driver)
	}
	if c.Blob.Driver == "s3" && c.Blob.Bucket == "" {
		return fmt.Errorf("blob driver s3 requires a bucket")
	}
	switch c.Logging.Mode {
	case "development", "production":
	default:
		return fmt.Errorf("invalid logging mode %q (development|production)", c.Logging.Mode)
	}
	return nil
}
