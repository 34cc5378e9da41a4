// Package telemetry persists simulation samples to a local SQLite database,
// one row per tick, tagged with the run ID so multiple runs can share a file.
package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/gammazero/workerpool"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dvoicu/process-simulator/internal/core"
)

// Store wraps the SQLite handle. All writes go through Insert, which is safe
// for concurrent use.
type Store struct {
	db    *sql.DB
	mu    sync.Mutex
	runID string
}

// NewStore opens (or creates) the database at dbPath and ensures the schema
// exists. The runID tags every row written through this store.
func NewStore(dbPath, runID string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("telemetry database path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create telemetry directory")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open telemetry database")
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, runID: runID}, nil
}

// Insert appends one sample row.
func (s *Store) Insert(ctx context.Context, sample core.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO samples (run_id, sim_time, wall_time, analog, digital, status)
        VALUES (?, ?, ?, ?, ?, ?)
    `,
		s.runID,
		sample.Time,
		sample.Timestamp.Unix(),
		sample.Analog,
		sample.Digital,
		sample.StatusText,
	)
	return errors.Wrap(err, "insert sample")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Wrap(s.db.Close(), "close telemetry database")
}

// Recorder feeds samples to a Store through a single background worker, so a
// slow disk never stalls the tick that produced the sample. Append never
// returns an error; insert failures are logged by the worker instead.
type Recorder struct {
	store *Store
	pool  *workerpool.WorkerPool
}

// NewRecorder opens the store and starts the write worker.
func NewRecorder(dbPath, runID string) (*Recorder, error) {
	store, err := NewStore(dbPath, runID)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		store: store,
		pool:  workerpool.New(1),
	}, nil
}

func (r *Recorder) Name() string {
	return "telemetry"
}

// Append queues the sample for insertion and returns immediately.
func (r *Recorder) Append(sample core.Sample) error {
	r.pool.Submit(func() {
		if err := r.store.Insert(context.Background(), sample); err != nil {
			log.Warn().Err(err).Msg("Failed to store telemetry sample")
		}
	})
	return nil
}

// Close drains any queued writes, then closes the store.
func (r *Recorder) Close() error {
	r.pool.StopWait()
	return r.store.Close()
}
