package library

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id         VARCHAR PRIMARY KEY,
	path       VARCHAR NOT NULL,
	width      INTEGER NOT NULL,
	height     INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	dhash      BIGINT NOT NULL
)`

// openDB opens an in-memory DuckDB instance holding the catalog for one
// session. Nothing is persisted across process restarts.
func openDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	// DuckDB works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return db, nil
}
