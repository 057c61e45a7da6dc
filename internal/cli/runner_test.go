package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/server"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/ui"
)

type harness struct {
	cfg      *config.Config
	repo     store.Repository
	out, err *bytes.Buffer
}

func setup(t *testing.T, token string) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("TADA_HOME", t.TempDir())
	t.Setenv("TADA_TOKEN", "")

	repo, err := jsonstore.Open(filepath.Join(t.TempDir(), "todos.json"))
	require.NoError(t, err)
	srv, err := server.New(repo, server.Options{Token: token})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.Client.Addr = ts.URL

	h := &harness{cfg: cfg, repo: repo, out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	oldOut, oldErr := ui.Out, ui.Err
	ui.Out, ui.Err = h.out, h.err
	ui.SetColorMode("never")
	t.Cleanup(func() {
		ui.Out, ui.Err = oldOut, oldErr
		ui.SetColorMode("auto")
	})
	return h
}

func (h *harness) run(args ...string) int {
	return Run(context.Background(), args, Options{Config: h.cfg})
}

func TestAddListDoneRemove(t *testing.T) {
	h := setup(t, "")
	ctx := context.Background()

	require.Equal(t, 0, h.run("add", "Buy", "milk"))
	require.Equal(t, 0, h.run("add", "Walk dog"))

	todos, err := h.repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "Buy milk", todos[0].Description)

	require.Equal(t, 0, h.run("done", "1"))
	todos, _ = h.repo.List(ctx)
	assert.Equal(t, model.Complete, todos[0].Status)
	assert.Contains(t, h.out.String(), "#1 is now Complete")

	h.out.Reset()
	require.Equal(t, 0, h.run("ls"))
	out := h.out.String()
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Walk dog")
	assert.Contains(t, out, "Total 2")
	assert.Contains(t, out, "50%")

	require.Equal(t, 0, h.run("rm", "2"))
	todos, _ = h.repo.List(ctx)
	require.Len(t, todos, 1)
}

func TestListGrouped(t *testing.T) {
	h := setup(t, "")
	ctx := context.Background()
	_, err := h.repo.Add(ctx, "open one")
	require.NoError(t, err)

	code := Run(ctx, []string{"ls"}, Options{Config: h.cfg, Group: true})
	require.Equal(t, 0, code)
	out := h.out.String()
	assert.Less(t, strings.Index(out, "Pending"), strings.Index(out, "open one"))
	assert.Contains(t, out, "(none)")
}

func TestUsageErrors(t *testing.T) {
	h := setup(t, "")
	cases := [][]string{
		{"add"},
		{"add", "   "},
		{"done"},
		{"done", "abc"},
		{"rm", "1", "2"},
		{"auth"},
		{"auth", "whoami"},
		{"frobnicate"},
	}
	for _, args := range cases {
		assert.Equal(t, 2, h.run(args...), strings.Join(args, " "))
	}
}

func TestDoneUnknownID(t *testing.T) {
	h := setup(t, "")
	assert.Equal(t, 2, h.run("done", "42"))
	assert.Contains(t, h.err.String(), "no todo with id 42")
}

func TestRemoteFailureIsRuntimeError(t *testing.T) {
	h := setup(t, "secret")
	assert.Equal(t, 1, h.run("ls"))
	assert.Contains(t, h.err.String(), "get_todos: unauthorized")
}

func TestAuthLoginThenRemoteAccepts(t *testing.T) {
	h := setup(t, "secret")

	code := Run(context.Background(), []string{"auth", "login"}, Options{
		Config: h.cfg,
		In:     strings.NewReader("Bearer secret\n"),
	})
	require.Equal(t, 0, code)

	tok, err := auth.Token()
	require.NoError(t, err)
	assert.Equal(t, "secret", tok)

	assert.Equal(t, 0, h.run("add", "with token"))

	h.out.Reset()
	require.Equal(t, 0, h.run("auth", "status"))
	assert.Contains(t, h.out.String(), "source: file")

	require.Equal(t, 0, h.run("auth", "logout"))
	tok, err = auth.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestHelp(t *testing.T) {
	h := setup(t, "")
	assert.Equal(t, 0, h.run("help"))
	assert.Contains(t, h.out.String(), "tada serve")
}

func TestServeRunsGinInReleaseMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	t.Setenv(gin.EnvGinMode, "")
	gin.SetMode(gin.DebugMode)
	releaseGin()
	assert.Equal(t, gin.ReleaseMode, gin.Mode())

	t.Setenv(gin.EnvGinMode, gin.DebugMode)
	gin.SetMode(gin.DebugMode)
	releaseGin()
	assert.Equal(t, gin.DebugMode, gin.Mode())
}
