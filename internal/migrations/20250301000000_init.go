package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upInit, downInit)
}

func upInit(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE collector_runs (
		id SERIAL PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		output_path TEXT NOT NULL,
		row_count INTEGER NOT NULL
	);
	CREATE TABLE collector_failed_links (
		id SERIAL PRIMARY KEY,
		run_id INTEGER NOT NULL REFERENCES collector_runs(id),
		link TEXT NOT NULL
	);
	`)
	return err
}

func downInit(tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE collector_failed_links;
	DROP TABLE collector_runs;
	`)
	return err
}
