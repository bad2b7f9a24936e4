package db

import (
	"context"
	"database/sql"
	"net/url"
	"os"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient holds a read-only connection to a SQLite database file
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient opens the database file at path for introspection. The
// file must exist; it is never created or modified.
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}
	if info.IsDir() {
		return nil, errors.Newf("database %s is a directory", path)
	}

	dsn := (&url.URL{Scheme: "file", Opaque: path, RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &SQLiteClient{db: db}, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}
