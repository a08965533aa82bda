package storage

import (
	"database/sql"
	"fmt"

	"github.com/loganlanou/colink-venture/storage/db"
	_ "github.com/mattn/go-sqlite3"
)

// NewTestDB creates an in-memory SQLite database for testing
func NewTestDB() (*sql.DB, *db.Queries, func(), error) {
	// A single connection keeps every query on the same in-memory database
	database, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open test database: %w", err)
	}
	database.SetMaxOpenConns(1)

	if err := migrate(database); err != nil {
		database.Close()
		return nil, nil, nil, err
	}

	queries := db.New(database)

	cleanup := func() {
		database.Close()
	}

	return database, queries, cleanup, nil
}

// NewTestStorage wraps NewTestDB in a Storage.
func NewTestStorage() (*Storage, func(), error) {
	database, queries, cleanup, err := NewTestDB()
	if err != nil {
		return nil, nil, err
	}
	return &Storage{db: database, Queries: queries}, cleanup, nil
}
