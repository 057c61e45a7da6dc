// Package sqlstore keeps todos in a SQLite database file.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/Makepad-fr/tada/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	description TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'Incomplete'
);`

// Store keeps todos in the todos table.
type Store struct {
	db *sql.DB
}

// Open creates the parent directory and the database file if needed and
// applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer; sqlite serializes anyway and this avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Add(ctx context.Context, description string) (model.Todo, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (description, status) VALUES (?, ?)`,
		description, model.Incomplete.String())
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	return model.Todo{ID: id, Description: description, Status: model.Incomplete}, nil
}

func (s *Store) List(ctx context.Context) ([]model.Todo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, description, status FROM todos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		var t model.Todo
		var status string
		if err := rows.Scan(&t.ID, &t.Description, &status); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		if t.Status, err = model.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("todo %d: %w", t.ID, err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	return todos, nil
}

func (s *Store) Update(ctx context.Context, t model.Todo) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE todos SET description = ?, status = ? WHERE id = ?`,
		t.Description, t.Status.String(), t.ID)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
