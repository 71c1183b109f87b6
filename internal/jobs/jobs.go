// Package jobs records the state of compression and decompression jobs so the
// manager can report on work the workers do.
package jobs

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("job not found")

type Kind string

const (
	KindCompress   Kind = "compress"
	KindDecompress Kind = "decompress"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

type Job struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"kind"`
	Status Status `json:"status"`
	// InputPath is the uploaded object, TablePath the frequency table that
	// rebuilds the code tree for it.
	InputPath  string    `json:"input_path"`
	TablePath  string    `json:"table_path"`
	OutputPath string    `json:"output_path,omitempty"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Store interface {
	Create(ctx context.Context, job *Job) error
	// SetStatus moves a job to status. outputPath and errText replace the
	// stored values.
	SetStatus(ctx context.Context, id string, status Status, outputPath, errText string) error
	Get(ctx context.Context, id string) (*Job, error)
}

// NewStore opens the Postgres store for dsn, or an in-memory store when dsn
// is empty. The returned func releases the store.
func NewStore(ctx context.Context, dsn string) (Store, func(), error) {
	if dsn == "" {
		return NewMemoryStore(), func() {}, nil
	}
	pool, err := Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return NewPostgresStore(pool), pool.Close, nil
}
