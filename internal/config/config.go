// Package config loads the relay configuration from the process environment.
package config

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

// MaxExpiry is the longest lifetime SigV4 allows for a presigned URL.
const MaxExpiry = 7 * 24 * time.Hour

type Config struct {
	Storage Storage
	Upload  Upload

	LogLevel string `env:"LOG_LEVEL, default=info"`
	Port     int    `env:"PORT, default=4000"`
}

// Storage identifies the bucket and the credentials used to sign for it.
// Values are not validated here; missing credentials fail at signing time.
type Storage struct {
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	BucketName      string `env:"AWS_BUCKET_NAME"`
	Region          string `env:"AWS_REGION, default=auto"`

	// Endpoint targets an S3 compatible store instead of AWS.
	Endpoint       string `env:"AWS_ENDPOINT_URL"`
	ForcePathStyle bool   `env:"AWS_S3_FORCE_PATH_STYLE, default=false"`
}

type Upload struct {
	Expiry       time.Duration `env:"UPLOAD_URL_EXPIRY, default=168h"`
	RelayMethod  string        `env:"UPLOAD_RELAY_METHOD, default=POST"`
	RelayTimeout time.Duration `env:"UPLOAD_RELAY_TIMEOUT, default=0s"`
	Strict       bool          `env:"UPLOAD_RELAY_STRICT, default=false"`
	ContentMD5   bool          `env:"UPLOAD_CONTENT_MD5, default=false"`
}

// Load reads an optional .env file and then the environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves the configuration from l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if c.Storage.Region == "" {
		c.Storage.Region = "auto"
	}

	c.Upload.RelayMethod = strings.ToUpper(strings.TrimSpace(c.Upload.RelayMethod))
	switch c.Upload.RelayMethod {
	case "":
		c.Upload.RelayMethod = http.MethodPost
	case http.MethodPost, http.MethodPut:
	default:
		return fmt.Errorf("UPLOAD_RELAY_METHOD %q: must be POST or PUT", c.Upload.RelayMethod)
	}

	if c.Upload.Expiry <= 0 || c.Upload.Expiry > MaxExpiry {
		return fmt.Errorf("UPLOAD_URL_EXPIRY %v: must be within (0, %v]", c.Upload.Expiry, MaxExpiry)
	}
	if c.Upload.RelayTimeout < 0 {
		return fmt.Errorf("UPLOAD_RELAY_TIMEOUT %v: must not be negative", c.Upload.RelayTimeout)
	}
	return nil
}

// Logger builds the process logger at the configured level.
func (c *Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}
