// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultHTTPAddr      = ":8081"
	DefaultMaxUploadSize = 1 << 30 // 1GB
	DefaultGCSTimeout    = 50 * time.Second
)

type Config struct {
	DevelopmentMode   bool
	ProjectID         string
	Bucket            string
	CompressTopicID   string
	DecompressTopicID string
	SubscriptionID    string
	// DatabaseURL selects the Postgres job store; empty keeps jobs in memory.
	DatabaseURL   string
	HTTPAddr      string
	MaxUploadSize int64
	GCSTimeout    time.Duration
}

// Load reads the configuration. Unset variables take their defaults; a set
// but malformed value is an error.
func Load() (*Config, error) {
	cfg := &Config{
		ProjectID:         os.Getenv("GCP_PROJECT_ID"),
		Bucket:            os.Getenv("GCS_BUCKET"),
		CompressTopicID:   os.Getenv("PUBSUB_COMPRESS_TOPIC_ID"),
		DecompressTopicID: os.Getenv("PUBSUB_DECOMPRESS_TOPIC_ID"),
		SubscriptionID:    os.Getenv("PUBSUB_SUB_ID"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPAddr:          DefaultHTTPAddr,
		MaxUploadSize:     DefaultMaxUploadSize,
		GCSTimeout:        DefaultGCSTimeout,
	}

	// a malformed DEVELOPMENT_MODE just leaves debug logging off
	if isDev, err := strconv.ParseBool(os.Getenv("DEVELOPMENT_MODE")); err == nil {
		cfg.DevelopmentMode = isDev
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("MAX_UPLOAD_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE %q", v)
		}
		cfg.MaxUploadSize = n
	}
	if v := os.Getenv("GCS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid GCS_TIMEOUT %q", v)
		}
		cfg.GCSTimeout = d
	}
	return cfg, nil
}

// RequireWorker checks the settings a worker cannot start without.
func (c *Config) RequireWorker() error {
	return require(map[string]string{
		"GCP_PROJECT_ID": c.ProjectID,
		"GCS_BUCKET":     c.Bucket,
		"PUBSUB_SUB_ID":  c.SubscriptionID,
	})
}

// RequireManager checks the settings the manager cannot start without.
func (c *Config) RequireManager() error {
	return require(map[string]string{
		"GCP_PROJECT_ID":             c.ProjectID,
		"GCS_BUCKET":                 c.Bucket,
		"PUBSUB_COMPRESS_TOPIC_ID":   c.CompressTopicID,
		"PUBSUB_DECOMPRESS_TOPIC_ID": c.DecompressTopicID,
	})
}

func require(vars map[string]string) error {
	for _, name := range []string{"GCP_PROJECT_ID", "GCS_BUCKET", "PUBSUB_SUB_ID", "PUBSUB_COMPRESS_TOPIC_ID", "PUBSUB_DECOMPRESS_TOPIC_ID"} {
		if v, ok := vars[name]; ok && v == "" {
			return fmt.Errorf("%s is not set", name)
		}
	}
	return nil
}
