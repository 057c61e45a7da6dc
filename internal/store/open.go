package store

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/sqlstore"
)

var (
	_ Repository = (*sqlstore.Store)(nil)
	_ Repository = (*jsonstore.Store)(nil)
)

// Open returns the backend named by kind ("sqlite" or "json") at path.
func Open(kind, path string) (Repository, error) {
	switch strings.ToLower(kind) {
	case "", "sqlite":
		return sqlstore.Open(path)
	case "json":
		return jsonstore.Open(path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
