// Package manager is the HTTP front end. It stores uploads in Cloud Storage,
// records jobs and hands them to workers through Pub/Sub.
package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/ntdkhiem/huffman-platform/compression"
	"github.com/ntdkhiem/huffman-platform/internal/common"
	"github.com/ntdkhiem/huffman-platform/internal/jobs"
)

type Application struct {
	GCSClient         common.GCSClientInterface
	PUBSUBClient      common.PubSubClientInterface
	Jobs              jobs.Store
	CTX               *context.Context
	Bucket            string
	CompressTopicID   string
	DecompressTopicID string
	MaxUploadSize     int64
	GCSTimeout        time.Duration
}

func (app *Application) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/compress", app.compressHandler)
	mux.HandleFunc("/decompress", app.decompressHandler)
	mux.HandleFunc("GET /jobs/{id}", app.jobHandler)
	return mux
}

type countResult struct {
	table compression.FrequencyTable
	err   error
}

func (app *Application) compressHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		common.WriteError(w, "Only POST method allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, ok := app.formFile(w, r, "file")
	if !ok {
		return
	}
	defer file.Close()

	slog.Info("Processing a request for compressing")

	jobID := uuid.New().String()
	slog.Debug("Creating new job", "job", jobID, "file", header.Filename)

	ctx, cancel := context.WithTimeout(*app.CTX, app.GCSTimeout)
	defer cancel()

	// create a pipe to simultaneously build the frequency table while streaming content to GCS
	pr, pw := io.Pipe()
	counted := make(chan countResult, 1)
	go func() {
		ft, err := compression.CountFrequencies(io.TeeReader(file, pw))
		pw.CloseWithError(err)
		counted <- countResult{ft, err}
	}()

	originalFilePath := common.OriginalFilePath(jobID, header.Filename)
	err := common.WriteObject(ctx, app.GCSClient, app.Bucket, originalFilePath, func(wc io.Writer) error {
		_, err := io.Copy(wc, pr)
		return err
	})
	// unblocks the counting goroutine if the upload stopped early
	pr.CloseWithError(err)
	result := <-counted
	if errors.Is(result.err, compression.ErrInvalidInput) {
		slog.Info("Rejected upload", "job", jobID, "error", result.err)
		common.WriteError(w, "File is not valid UTF-8 text", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("Failed to stream data to GCS", "job", jobID, "error", err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if result.err != nil {
		slog.Error("Failed to read file to build freq. table", "job", jobID, "error", result.err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	slog.Debug(fmt.Sprintf("Uploaded %s to GCS", header.Filename), "job", jobID, "symbols", result.table.Total())

	freqTablePath := common.FreqTablePath(jobID)
	err = common.WriteObject(ctx, app.GCSClient, app.Bucket, freqTablePath, func(wc io.Writer) error {
		return compression.WriteFrequencyTable(wc, result.table)
	})
	if err != nil {
		slog.Error("Failed to stream frequency table to GCS", "job", jobID, "error", err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	slog.Debug("Uploaded frequency table to GCS", "job", jobID)

	job := &jobs.Job{
		ID:        jobID,
		Kind:      jobs.KindCompress,
		Status:    jobs.StatusQueued,
		InputPath: originalFilePath,
		TablePath: freqTablePath,
	}
	message := common.CompressedMsgSchema{
		UID:              jobID,
		OriginalFilePath: originalFilePath,
		FreqTablePath:    freqTablePath,
	}
	if !app.enqueue(ctx, w, job, app.CompressTopicID, message) {
		return
	}

	common.WriteJSON(w, map[string]string{"job_id": jobID}, http.StatusAccepted)
}

func (app *Application) decompressHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		common.WriteError(w, "Only POST method allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, ok := app.formFile(w, r, "file")
	if !ok {
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, common.CompressedExt) {
		common.WriteError(w, "Wrong file format", http.StatusBadRequest)
		return
	}

	// the code tree is rebuilt from the table the file was compressed with
	tableFile, _, err := r.FormFile("table")
	if err != nil {
		common.WriteError(w, "Missing frequency table", http.StatusBadRequest)
		return
	}
	defer tableFile.Close()
	freqTable, err := compression.ReadFrequencyTable(tableFile)
	if err != nil {
		slog.Info("Rejected frequency table", "error", err)
		common.WriteError(w, "Invalid frequency table", http.StatusBadRequest)
		return
	}

	slog.Info("Processing a request for decompressing")

	jobID := uuid.New().String()
	slog.Debug("Creating new job", "job", jobID, "file", header.Filename)

	ctx, cancel := context.WithTimeout(*app.CTX, app.GCSTimeout)
	defer cancel()

	compressedFilePath := common.UploadedFilePath(jobID, header.Filename)
	err = common.WriteObject(ctx, app.GCSClient, app.Bucket, compressedFilePath, func(wc io.Writer) error {
		_, err := io.Copy(wc, file)
		return err
	})
	if err != nil {
		slog.Error("Failed to stream compressed data to GCS", "job", jobID, "error", err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	slog.Debug(fmt.Sprintf("Uploaded %s to GCS", header.Filename), "job", jobID)

	freqTablePath := common.FreqTablePath(jobID)
	err = common.WriteObject(ctx, app.GCSClient, app.Bucket, freqTablePath, func(wc io.Writer) error {
		return compression.WriteFrequencyTable(wc, freqTable)
	})
	if err != nil {
		slog.Error("Failed to stream frequency table to GCS", "job", jobID, "error", err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	job := &jobs.Job{
		ID:        jobID,
		Kind:      jobs.KindDecompress,
		Status:    jobs.StatusQueued,
		InputPath: compressedFilePath,
		TablePath: freqTablePath,
	}
	message := common.DecompressedMsgSchema{
		UID:                jobID,
		CompressedFilePath: compressedFilePath,
		FreqTablePath:      freqTablePath,
	}
	if !app.enqueue(ctx, w, job, app.DecompressTopicID, message) {
		return
	}

	common.WriteJSON(w, map[string]string{"job_id": jobID}, http.StatusAccepted)
}

func (app *Application) jobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	job, err := app.Jobs.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			common.WriteError(w, "Job not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to look up job", "job", jobID, "error", err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	common.WriteJSON(w, job, http.StatusOK)
}

// formFile limits the request body and extracts the named upload. It writes
// the error response itself and reports false on failure.
func (app *Application) formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	file, header, err := r.FormFile(field)
	if err != nil {
		slog.Error("Failed to get file from form", "error", err)
		// This error is triggered when MaxBytesReader limit is exceeded
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			common.WriteError(w, "File exceeds size limit", http.StatusRequestEntityTooLarge)
			return nil, nil, false
		}
		common.WriteError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}
	return file, header, true
}

// enqueue records the job and publishes its message. It writes the error
// response itself and reports false on failure.
func (app *Application) enqueue(ctx context.Context, w http.ResponseWriter, job *jobs.Job, topicID string, message any) bool {
	if err := app.Jobs.Create(ctx, job); err != nil {
		slog.Error("Failed to record job", "job", job.ID, "error", err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return false
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		slog.Error("Failed to marshal MQ message", "job", job.ID, "error", err)
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return false
	}

	// TODO: make this more tolerable to message delivery failures.
	returnedMessageID, err := app.PUBSUBClient.PublishMessage(*app.CTX, topicID, &pubsub.Message{
		Data: messageBytes,
	})
	if err != nil {
		slog.Error("Failed to send MQ message", "job", job.ID, "error", err)
		if serr := app.Jobs.SetStatus(ctx, job.ID, jobs.StatusFailed, "", "job could not be queued"); serr != nil {
			slog.Error("Failed to mark job as failed", "job", job.ID, "error", serr)
		}
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
		return false
	}
	slog.Debug("Sent message to Pub/Sub", "job", job.ID, "server_generated_message_id", returnedMessageID)
	return true
}
