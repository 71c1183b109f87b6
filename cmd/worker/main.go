package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/storage"

	"github.com/ntdkhiem/huffman-platform/internal/common"
	"github.com/ntdkhiem/huffman-platform/internal/config"
	"github.com/ntdkhiem/huffman-platform/internal/jobs"
	"github.com/ntdkhiem/huffman-platform/internal/worker"
)

func main() {
	methodFlag := flag.Bool("decompress", false, "flag to indicate this instance is for decompressing.")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	// initialize logging system
	common.SetupLogger(os.Stdout, cfg.DevelopmentMode)
	if err := cfg.RequireWorker(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Receive returns once the context is cancelled
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	app := worker.Application{
		GCSClient:  &common.RealGCSClient{Client: GCSClient},
		Jobs:       jobStore,
		CTX:        &ctx,
		Bucket:     cfg.Bucket,
		GCSTimeout: cfg.GCSTimeout,
	}

	sub := PUBSUBClient.Subscriber(cfg.SubscriptionID)
	receiveFunc := func(ctx context.Context, msg *pubsub.Message) {
		wrappedMsg := &common.RealMessage{Msg: msg}
		if *methodFlag {
			app.DecompressMessageHandler(ctx, wrappedMsg)
		} else {
			app.CompressMessageHandler(ctx, wrappedMsg)
		}
	}

	if *methodFlag {
		slog.Info("Listening for a new decompressing message...")
	} else {
		slog.Info("Listening for a new compressing message...")
	}
	err = sub.Receive(ctx, receiveFunc)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Cannot process job", "error", err)
		return
	}
	slog.Info("Stopped receiving messages")
}
