package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/syntrixbase/showroom/internal/storage/types"
	"github.com/syntrixbase/showroom/pkg/model"
)

// Store keeps documents in a single SQLite table with the payload as JSON.
// Data fields are addressed with json_extract, and the BINARY collation
// compares strings byte-wise, the same order MongoDB uses by default.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// EnableWAL enables Write-Ahead Logging for better concurrent readers.
	EnableWAL bool
}

// Open opens or creates a Store at the specified path.
func Open(dbPath string, opts Options) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		data TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(collection, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_documents_name ON documents(collection, json_extract(data, '$.name'));
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Create(ctx context.Context, doc types.StoredDoc) error {
	data := doc.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", doc.Id, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, collection, created_at, updated_at, data) VALUES (?, ?, ?, ?, ?)`,
		doc.Id, doc.Collection, doc.CreatedAt, doc.UpdatedAt, string(payload))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return model.ErrExists
		}
		return model.WrapError(err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, q model.Query) ([]*types.StoredDoc, error) {
	stmt, args, err := buildSelect(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, model.WrapError(err)
	}
	defer rows.Close()

	var docs []*types.StoredDoc
	for rows.Next() {
		var (
			doc     types.StoredDoc
			payload string
		)
		if err := rows.Scan(&doc.Id, &doc.Collection, &doc.CreatedAt, &doc.UpdatedAt, &payload); err != nil {
			return nil, model.WrapError(err)
		}
		if err := json.Unmarshal([]byte(payload), &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", doc.Id, err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, model.WrapError(err)
	}

	return docs, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}
