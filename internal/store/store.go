// Package store defines where the backend keeps todo records.
package store

import (
	"context"
	"errors"

	"github.com/Makepad-fr/tada/internal/model"
)

// ErrUnknownKind is returned by Open for an unsupported backend name.
var ErrUnknownKind = errors.New("unknown store kind")

// Repository persists todo records. Update and Delete of a missing id are
// not errors.
type Repository interface {
	Add(ctx context.Context, description string) (model.Todo, error)
	List(ctx context.Context) ([]model.Todo, error)
	Update(ctx context.Context, todo model.Todo) error
	Delete(ctx context.Context, id int64) error
	Close() error
}
