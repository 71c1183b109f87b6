package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 5
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return pool, nil
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  status TEXT NOT NULL,
  input_path TEXT NOT NULL,
  table_path TEXT NOT NULL,
  output_path TEXT NOT NULL DEFAULT '',
  error TEXT NOT NULL DEFAULT '',
  updated_at TIMESTAMPTZ NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("migrate jobs table: %w", err)
	}
	return nil
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, job *Job) error {
	job.UpdatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
INSERT INTO jobs (id, kind, status, input_path, table_path, output_path, error, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, string(job.Kind), string(job.Status), job.InputPath, job.TablePath,
		job.OutputPath, job.Error, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", job.ID, err)
	}
	return nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, id string, status Status, outputPath, errText string) error {
	tag, err := s.pool.Exec(ctx, `
UPDATE jobs SET status = $2, output_path = $3, error = $4, updated_at = $5
WHERE id = $1`,
		id, string(status), outputPath, errText, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Job, error) {
	var (
		job          Job
		kind, status string
	)
	err := s.pool.QueryRow(ctx, `
SELECT id, kind, status, input_path, table_path, output_path, error, updated_at
FROM jobs WHERE id = $1`, id).Scan(
		&job.ID, &kind, &status, &job.InputPath, &job.TablePath,
		&job.OutputPath, &job.Error, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select job %s: %w", id, err)
	}
	job.Kind = Kind(kind)
	job.Status = Status(status)
	return &job, nil
}
