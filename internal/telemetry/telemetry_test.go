package telemetry_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvoicu/process-simulator/internal/core"
	"github.com/dvoicu/process-simulator/internal/telemetry"
)

func sampleAt(t float64, analog float64) core.Sample {
	return core.Sample{
		Time:       t,
		Analog:     analog,
		Digital:    1,
		Status:     core.AlarmNormal,
		StatusText: "SYSTEM NORMAL",
		Timestamp:  time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestStoreInsertAndReadBack(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "telemetry.db")
	runID := uuid.NewString()

	store, err := telemetry.NewStore(dbPath, runID)
	require.NoError(t, err, "opening a store in a fresh directory should succeed")
	defer store.Close()

	require.NoError(t, store.Insert(context.Background(), sampleAt(0.1, 23.4567)))
	require.NoError(t, store.Insert(context.Background(), sampleAt(0.2, 24.1)))

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "database file should exist on disk")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT run_id, sim_time, analog, digital, status FROM samples ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var got []struct {
		runID   string
		simTime float64
		analog  float64
		digital int
		status  string
	}
	for rows.Next() {
		var r struct {
			runID   string
			simTime float64
			analog  float64
			digital int
			status  string
		}
		require.NoError(t, rows.Scan(&r.runID, &r.simTime, &r.analog, &r.digital, &r.status))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())

	require.Len(t, got, 2, "both inserts should be persisted")
	assert.Equal(t, runID, got[0].runID, "rows should carry the run ID")
	assert.InDelta(t, 0.1, got[0].simTime, 1e-9)
	assert.InDelta(t, 23.4567, got[0].analog, 1e-9)
	assert.Equal(t, 1, got[0].digital)
	assert.Equal(t, "SYSTEM NORMAL", got[0].status)
	assert.InDelta(t, 0.2, got[1].simTime, 1e-9)
}

func TestStoreRejectsEmptyPath(t *testing.T) {
	_, err := telemetry.NewStore("", "run")
	require.Error(t, err, "an empty database path should be rejected")
}

func TestRecorderDrainsOnClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")

	rec, err := telemetry.NewRecorder(dbPath, uuid.NewString())
	require.NoError(t, err)

	assert.Equal(t, "telemetry", rec.Name())

	for i := 0; i < 10; i++ {
		require.NoError(t, rec.Append(sampleAt(float64(i+1)*0.1, 20.0)))
	}
	require.NoError(t, rec.Close(), "close should drain queued writes without error")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM samples`).Scan(&count))
	assert.Equal(t, 10, count, "all queued samples should be written before close returns")
}

func TestSeparateRunsShareOneFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")

	first, err := telemetry.NewStore(dbPath, "run-a")
	require.NoError(t, err)
	require.NoError(t, first.Insert(context.Background(), sampleAt(0.1, 20.0)))
	require.NoError(t, first.Close())

	second, err := telemetry.NewStore(dbPath, "run-b")
	require.NoError(t, err)
	require.NoError(t, second.Insert(context.Background(), sampleAt(0.1, 21.0)))
	require.NoError(t, second.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(DISTINCT run_id) FROM samples`).Scan(&count))
	assert.Equal(t, 2, count, "rows from different runs should be distinguishable")
}
