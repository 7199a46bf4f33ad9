package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/ports"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const (
	StateFileName = "stackMessages.db"
	stateDirMode  = 0o700
)

const schema = `
CREATE TABLE IF NOT EXISTS stack_messages (
	stack_id   TEXT PRIMARY KEY,
	message_id TEXT NOT NULL
);`

// Repository keeps the message index in a single-table SQLite database.
type Repository struct {
	path string
	db   *sql.DB
}

var _ ports.StateRepository = (*Repository)(nil)

func Open(ctx context.Context, dataDir string) (*Repository, error) {
	if dataDir == "" {
		return nil, errors.New("state data directory is empty")
	}
	if err := os.MkdirAll(dataDir, stateDirMode); err != nil {
		return nil, &domain.PersistenceError{Op: "create state directory", Path: dataDir, Err: err}
	}

	path, err := filepath.Abs(filepath.Join(dataDir, StateFileName))
	if err != nil {
		return nil, fmt.Errorf("resolve state path: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "open state database", Path: path, Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, `
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
		PRAGMA synchronous = NORMAL;
	`); err != nil {
		_ = db.Close()
		return nil, &domain.PersistenceError{Op: "configure state database", Path: path, Err: err}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, &domain.PersistenceError{Op: "migrate state database", Path: path, Err: err}
	}

	return &Repository{path: path, db: db}, nil
}

func (r *Repository) Location() string {
	return r.path
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Load(ctx context.Context) (domain.MessageIndex, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT stack_id, message_id FROM stack_messages`)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "query stack messages", Path: r.path, Err: err}
	}
	defer rows.Close()

	index := domain.MessageIndex{}
	for rows.Next() {
		var stackID, messageID string
		if err := rows.Scan(&stackID, &messageID); err != nil {
			return nil, &domain.PersistenceError{Op: "scan stack message", Path: r.path, Err: err}
		}
		index[domain.StackID(stackID)] = domain.MessageID(messageID)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "iterate stack messages", Path: r.path, Err: err}
	}

	return index, nil
}

// Save replaces the table contents in one transaction, so a failed flush keeps the previous index.
func (r *Repository) Save(ctx context.Context, index domain.MessageIndex) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.PersistenceError{Op: "begin state transaction", Path: r.path, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stack_messages`); err != nil {
		return &domain.PersistenceError{Op: "clear stack messages", Path: r.path, Err: err}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stack_messages (stack_id, message_id) VALUES (?, ?)`)
	if err != nil {
		return &domain.PersistenceError{Op: "prepare stack message insert", Path: r.path, Err: err}
	}
	defer stmt.Close()

	for stackID, messageID := range index {
		if _, err := stmt.ExecContext(ctx, string(stackID), string(messageID)); err != nil {
			return &domain.PersistenceError{Op: "insert stack message", Path: r.path, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.PersistenceError{Op: "commit state transaction", Path: r.path, Err: err}
	}

	return nil
}
