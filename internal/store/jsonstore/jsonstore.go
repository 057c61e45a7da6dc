package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
)

// JSON-backed storage. Single file, human-readable, portable.
// The mutex covers one process; two servers on one file will race.

// Store reads and rewrites the whole file on every call.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a store for path, creating its directory. The file itself is
// created on the first write.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) load() ([]model.Todo, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Todo{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var todos []model.Todo
	if err := json.Unmarshal(b, &todos); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return todos, nil
}

func (s *Store) save(todos []model.Todo) error {
	b, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *Store) Add(_ context.Context, description string) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	todos, err := s.load()
	if err != nil {
		return model.Todo{}, err
	}
	var next int64 = 1
	for _, t := range todos {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	t := model.Todo{ID: next, Description: description, Status: model.Incomplete}
	if err := s.save(append(todos, t)); err != nil {
		return model.Todo{}, err
	}
	return t, nil
}

func (s *Store) List(_ context.Context) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) Update(_ context.Context, todo model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	todos, err := s.load()
	if err != nil {
		return err
	}
	for i := range todos {
		if todos[i].ID == todo.ID {
			todos[i].Description = todo.Description
			todos[i].Status = todo.Status
			return s.save(todos)
		}
	}
	return nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	todos, err := s.load()
	if err != nil {
		return err
	}
	for i := range todos {
		if todos[i].ID == id {
			return s.save(append(todos[:i], todos[i+1:]...))
		}
	}
	return nil
}

func (s *Store) Close() error { return nil }
