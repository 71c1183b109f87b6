package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{"DEVELOPMENT_MODE", "HTTP_ADDR", "MAX_UPLOAD_SIZE", "GCS_TIMEOUT", "DATABASE_URL"} {
		t.Setenv(name, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DevelopmentMode {
		t.Error("expected development mode off")
	}
	if cfg.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("HTTPAddr: got %q want %q", cfg.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.MaxUploadSize != DefaultMaxUploadSize {
		t.Errorf("MaxUploadSize: got %d want %d", cfg.MaxUploadSize, DefaultMaxUploadSize)
	}
	if cfg.GCSTimeout != DefaultGCSTimeout {
		t.Errorf("GCSTimeout: got %v want %v", cfg.GCSTimeout, DefaultGCSTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEVELOPMENT_MODE", "true")
	t.Setenv("GCP_PROJECT_ID", "proj")
	t.Setenv("GCS_BUCKET", "bucket")
	t.Setenv("PUBSUB_COMPRESS_TOPIC_ID", "compress")
	t.Setenv("PUBSUB_DECOMPRESS_TOPIC_ID", "decompress")
	t.Setenv("PUBSUB_SUB_ID", "sub")
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("MAX_UPLOAD_SIZE", "2048")
	t.Setenv("GCS_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Config{
		DevelopmentMode:   true,
		ProjectID:         "proj",
		Bucket:            "bucket",
		CompressTopicID:   "compress",
		DecompressTopicID: "decompress",
		SubscriptionID:    "sub",
		DatabaseURL:       "postgres://localhost/jobs",
		HTTPAddr:          ":9000",
		MaxUploadSize:     2048,
		GCSTimeout:        5 * time.Second,
	}
	if *cfg != want {
		t.Errorf("got %+v\nwant %+v", *cfg, want)
	}
	if err := cfg.RequireManager(); err != nil {
		t.Errorf("RequireManager: %v", err)
	}
	if err := cfg.RequireWorker(); err != nil {
		t.Errorf("RequireWorker: %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name, key, value string
	}{
		{"size not a number", "MAX_UPLOAD_SIZE", "big"},
		{"size negative", "MAX_UPLOAD_SIZE", "-1"},
		{"timeout not a duration", "GCS_TIMEOUT", "50"},
		{"timeout zero", "GCS_TIMEOUT", "0s"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	cfg := &Config{ProjectID: "proj", Bucket: "bucket"}
	if err := cfg.RequireWorker(); err == nil {
		t.Error("expected missing PUBSUB_SUB_ID to fail")
	}
	cfg.SubscriptionID = "sub"
	if err := cfg.RequireWorker(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := cfg.RequireManager(); err == nil {
		t.Error("expected missing topics to fail")
	}
}
