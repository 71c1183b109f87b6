// Package worker runs compression and decompression jobs taken from Pub/Sub
// against objects in Cloud Storage.
package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ntdkhiem/huffman-platform/bitio"
	"github.com/ntdkhiem/huffman-platform/compression"
	"github.com/ntdkhiem/huffman-platform/internal/common"
	"github.com/ntdkhiem/huffman-platform/internal/jobs"
)

const statusTimeout = 5 * time.Second

type Application struct {
	GCSClient  common.GCSClientInterface
	Jobs       jobs.Store
	CTX        *context.Context
	Bucket     string
	GCSTimeout time.Duration
}

func (app *Application) CompressMessageHandler(_ context.Context, msg common.MessageInterface) {
	var job common.CompressedMsgSchema
	if err := json.Unmarshal(msg.GetData(), &job); err != nil {
		slog.Error("Failed to unmarshal body from job message", "error", err)
		msg.Nack()
		return
	}

	slog.Info("Received job", "job", job.UID)

	ctx, cancel := context.WithTimeout(*app.CTX, app.GCSTimeout)
	defer cancel()
	app.setStatus(ctx, job.UID, jobs.StatusRunning, "", nil)

	// Download character frequency table from GCS
	freqTable, err := app.readFrequencyTable(ctx, job.FreqTablePath)
	if err != nil {
		app.reject(msg, job.UID, "Failed to load character frequency table", err)
		return
	}
	slog.Debug("Downloaded character frequency table", "job", job.UID, "distinct", len(freqTable))

	huffmanTree, err := compression.BuildCodeTree(freqTable)
	if err != nil {
		app.reject(msg, job.UID, "Failed to build Huffman Tree", err)
		return
	}
	prefixTable := compression.DeriveCodes(huffmanTree)
	slog.Debug("Built Huffman Tree", "job", job.UID, "bits", prefixTable.EncodedBits(freqTable))

	// stream file content down and compress
	ogFileReader, err := app.GCSClient.NewObjectReader(ctx, app.Bucket, job.OriginalFilePath)
	if err != nil {
		app.reject(msg, job.UID, "Failed to locate original file content", err)
		return
	}
	defer ogFileReader.Close()

	compressedFilePath := common.CompressedFilePath(job.UID)
	err = common.WriteObject(ctx, app.GCSClient, app.Bucket, compressedFilePath, func(wc io.Writer) error {
		buf := bufio.NewWriter(wc)
		bits := bitio.NewWriter(buf)
		if err := compression.Encode(prefixTable, ogFileReader, bits); err != nil {
			return err
		}
		if err := bits.Close(); err != nil {
			return err
		}
		return buf.Flush()
	})
	if err != nil {
		app.reject(msg, job.UID, "Failed to compress data", err)
		return
	}
	slog.Debug("Uploaded compressed data to GCS", "job", job.UID)

	app.setStatus(ctx, job.UID, jobs.StatusDone, compressedFilePath, nil)
	msg.Ack()
	slog.Info("Completed processing job", "job", job.UID)
}

func (app *Application) DecompressMessageHandler(_ context.Context, msg common.MessageInterface) {
	var job common.DecompressedMsgSchema
	if err := json.Unmarshal(msg.GetData(), &job); err != nil {
		slog.Error("Failed to unmarshal body from job message", "error", err)
		msg.Nack()
		return
	}

	slog.Info("Received job", "job", job.UID)

	ctx, cancel := context.WithTimeout(*app.CTX, app.GCSTimeout)
	defer cancel()
	app.setStatus(ctx, job.UID, jobs.StatusRunning, "", nil)

	// the tree must match the one the file was encoded with
	freqTable, err := app.readFrequencyTable(ctx, job.FreqTablePath)
	if err != nil {
		app.reject(msg, job.UID, "Failed to load character frequency table", err)
		return
	}
	huffmanTree, err := compression.BuildCodeTree(freqTable)
	if err != nil {
		app.reject(msg, job.UID, "Failed to build Huffman Tree", err)
		return
	}

	compFile, err := app.GCSClient.NewObjectReader(ctx, app.Bucket, job.CompressedFilePath)
	if err != nil {
		app.reject(msg, job.UID, "Failed to locate compressed file content", err)
		return
	}
	defer compFile.Close()
	slog.Debug("Opened compressed file from GCS", "job", job.UID)

	resultFilePath := common.DecompressedFilePath(job.UID)
	err = common.WriteObject(ctx, app.GCSClient, app.Bucket, resultFilePath, func(wc io.Writer) error {
		return compression.Decode(huffmanTree, bitio.NewReader(bufio.NewReader(compFile)), wc)
	})
	if err != nil {
		app.reject(msg, job.UID, "Failed to decompress data", err)
		return
	}
	slog.Debug("Uploaded final data to GCS", "job", job.UID)

	app.setStatus(ctx, job.UID, jobs.StatusDone, resultFilePath, nil)
	msg.Ack()
	slog.Info("Completed processing job", "job", job.UID)
}

func (app *Application) readFrequencyTable(ctx context.Context, path string) (compression.FrequencyTable, error) {
	rc, err := app.GCSClient.NewObjectReader(ctx, app.Bucket, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer rc.Close()
	return compression.ReadFrequencyTable(rc)
}

// reject records a failed job. Errors from the codec itself mean the inputs do
// not fit together and would fail again, so those messages are acked; storage
// errors are nacked for redelivery.
func (app *Application) reject(msg common.MessageInterface, jobID, text string, err error) {
	slog.Error(text, "job", jobID, "error", err)
	// the job's own context may be the one that ran out
	ctx, cancel := context.WithTimeout(*app.CTX, statusTimeout)
	defer cancel()
	app.setStatus(ctx, jobID, jobs.StatusFailed, "", err)
	if isPermanent(err) {
		msg.Ack()
		return
	}
	msg.Nack()
}

func isPermanent(err error) bool {
	return errors.Is(err, compression.ErrInvalidInput) ||
		errors.Is(err, compression.ErrSymbolNotInTable) ||
		errors.Is(err, compression.ErrCorruptStream)
}

// setStatus is best effort; a job whose status cannot be recorded is still
// processed.
func (app *Application) setStatus(ctx context.Context, jobID string, status jobs.Status, outputPath string, jobErr error) {
	if app.Jobs == nil {
		return
	}
	var errText string
	if jobErr != nil {
		errText = jobErr.Error()
	}
	if err := app.Jobs.SetStatus(ctx, jobID, status, outputPath, errText); err != nil {
		slog.Warn("Failed to update job status", "job", jobID, "status", status, "error", err)
	}
}
