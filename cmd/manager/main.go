package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/storage"

	"github.com/ntdkhiem/huffman-platform/internal/common"
	"github.com/ntdkhiem/huffman-platform/internal/config"
	"github.com/ntdkhiem/huffman-platform/internal/jobs"
	"github.com/ntdkhiem/huffman-platform/internal/manager"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	// initialize logging system
	common.SetupLogger(os.Stdout, cfg.DevelopmentMode)
	if err := cfg.RequireManager(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// initialize GCP services
	ctx := context.Background()

	GCSClient, err := storage.NewClient(ctx)
	if err != nil {
		slog.Error("Cannot create new client for GCS", "error", err)
		return
	}
	defer GCSClient.Close()
	slog.Debug("Initialized a GCS client.")

	PUBSUBClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		slog.Error("Cannot create new client for Pub/Sub", "error", err)
		return
	}
	defer PUBSUBClient.Close()
	slog.Debug("Initialized a Pub/Sub client.")

	jobStore, closeJobs, err := jobs.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Cannot open job store", "error", err)
		return
	}
	defer closeJobs()
	slog.Debug("Opened job store.", "postgres", cfg.DatabaseURL != "")

	app := manager.Application{
		GCSClient:         &common.RealGCSClient{Client: GCSClient},
		PUBSUBClient:      &common.RealPubSubClient{Client: PUBSUBClient},
		Jobs:              jobStore,
		CTX:               &ctx,
		Bucket:            cfg.Bucket,
		CompressTopicID:   cfg.CompressTopicID,
		DecompressTopicID: cfg.DecompressTopicID,
		MaxUploadSize:     cfg.MaxUploadSize,
		GCSTimeout:        cfg.GCSTimeout,
	}

	slog.Info("Listening...", "addr", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, app.Routes()); err != nil {
		slog.Error("Server stopped", "error", err)
	}
}
