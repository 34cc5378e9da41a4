package telemetry

import (
	"database/sql"

	"github.com/pkg/errors"
)

// initSchema creates the sample table on first use. Rows are append-only;
// nothing ever updates or deletes them.
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS samples (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id TEXT NOT NULL,
            sim_time REAL NOT NULL,
            wall_time INTEGER NOT NULL,
            analog REAL NOT NULL,
            digital INTEGER NOT NULL,
            status TEXT NOT NULL
        )
    `)
	if err != nil {
		return errors.Wrap(err, "create samples table")
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_samples_run_time ON samples(run_id, sim_time)
    `)
	if err != nil {
		return errors.Wrap(err, "create samples index")
	}

	return nil
}
