package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReopenKeepsRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.sqlite")

	s, err := Open(path)
	require.NoError(t, err)
	first, err := s.Add(ctx, "persist me")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	todos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, first, todos[0])
}

func TestIDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "db.sqlite"))
	require.NoError(t, err)
	defer s.Close()

	a, err := s.Add(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, a.ID))
	b, err := s.Add(ctx, "b")
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)
}
