// Package config loads stegocrypt settings from a YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/hasbyte1/go-stegocrypt/apitoken"
	"github.com/hasbyte1/go-stegocrypt/keystore"
	"github.com/hasbyte1/go-stegocrypt/objstore"
	"github.com/hasbyte1/go-stegocrypt/stego"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Environment variables that override file settings.
const (
	EnvS3Endpoint  = "S3_ENDPOINT"
	EnvS3AccessKey = "S3_ACCESS_KEY"
	EnvS3SecretKey = "S3_SECRET_KEY"
	EnvS3Region    = "S3_REGION"
	EnvS3UseSSL    = "S3_USE_SSL"
	EnvLogLevel    = "STEGOCRYPT_LOG_LEVEL"
)

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // "text" or "json"
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Address     string `yaml:"address"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`

	// Tokens, when present, are required on every /api request.
	Tokens []apitoken.Token `yaml:"tokens"`
}

// S3Config points at an S3-compatible object store.  It is only used when
// Endpoint is set.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled reports whether an endpoint is configured.
func (c S3Config) Enabled() bool { return c.Endpoint != "" }

// Client returns the connection settings in the form objstore expects.
func (c S3Config) Client() objstore.S3Config {
	return objstore.S3Config{
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Region:    c.Region,
		UseSSL:    c.UseSSL,
	}
}

// Config is the full set of settings.
type Config struct {
	KeyFile   string `yaml:"key_file"`   // where hide writes and reveal reads the key
	StegoFile string `yaml:"stego_file"` // default output of hide
	Encoding  string `yaml:"encoding"`   // text encoding of hidden messages
	Normalize bool   `yaml:"normalize"`  // NFC-normalise messages before hiding

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	S3     S3Config     `yaml:"s3"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		KeyFile:   keystore.DefaultKeyFile,
		StegoFile: "stego_image.png",
		Encoding:  stego.UTF8.Name(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Address:     ":8080",
			MaxUploadMB: 32,
		},
	}
}

// Load reads path on top of [Default], applies environment overrides and
// validates the result.  An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML data on top of [Default] without consulting the
// environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() error {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString(&c.S3.Endpoint, EnvS3Endpoint)
	setString(&c.S3.AccessKey, EnvS3AccessKey)
	setString(&c.S3.SecretKey, EnvS3SecretKey)
	setString(&c.S3.Region, EnvS3Region)
	setString(&c.Log.Level, EnvLogLevel)

	if v, ok := os.LookupEnv(EnvS3UseSSL); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, EnvS3UseSSL, v)
		}
		c.S3.UseSSL = b
	}
	return nil
}

// Validate checks that every setting has a usable value.
func (c *Config) Validate() error {
	if c.KeyFile == "" {
		return fmt.Errorf("%w: key_file is empty", ErrInvalid)
	}
	if _, err := stego.EncodingByName(c.Encoding); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalid, c.Log.Format)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: server.max_upload_mb must be positive", ErrInvalid)
	}
	if _, err := apitoken.NewSet(c.Server.Tokens...); err != nil {
		return fmt.Errorf("%w: server.tokens: %v", ErrInvalid, err)
	}
	return nil
}
