// Package server is the backend end of the bridge: it answers the four todo
// commands from a store.Repository.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/bridge"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// ErrUnknownCommand is reported for a command name with no handler.
var ErrUnknownCommand = errors.New("unknown command")

// MaxArgsBytes caps the request body of one invocation.
const MaxArgsBytes = 1 << 20

// errBadArgs marks failures that are the caller's fault.
var errBadArgs = errors.New("bad arguments")

type handlerFunc func(ctx context.Context, raw []byte) (any, error)

// Options tune the server beyond its repository.
type Options struct {
	Token  string // required bearer token, empty to accept anyone
	Logger *log.Logger
}

// Server routes invocations to handlers.
type Server struct {
	repo     store.Repository
	token    string
	logger   *log.Logger
	metrics  *metrics
	schemas  map[string]*jsonschema.Schema
	commands map[string]handlerFunc
	engine   *gin.Engine
}

func New(repo store.Repository, opt Options) (*Server, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	logger := opt.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		repo:    repo,
		token:   opt.Token,
		logger:  logger,
		metrics: newMetrics(),
		schemas: schemas,
	}
	s.commands = map[string]handlerFunc{
		bridge.CmdAddTodo:    s.addTodo,
		bridge.CmdGetTodos:   s.getTodos,
		bridge.CmdUpdateTodo: s.updateTodo,
		bridge.CmdDeleteTodo: s.deleteTodo,
	}
	for _, cmd := range bridge.Commands {
		if s.commands[cmd] == nil {
			return nil, fmt.Errorf("no handler for %s", cmd)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, bridge.Response{OK: true}) })
	r.GET("/metrics", s.metrics.handler())
	r.POST("/invoke/:cmd", s.requireToken(), s.invoke)
	s.engine = r
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is cancelled, then drains for up
// to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) invoke(c *gin.Context) {
	cmd := c.Param("cmd")
	start := time.Now()

	h, ok := s.commands[cmd]
	if !ok {
		s.metrics.observe("unknown", "rejected", time.Since(start))
		s.fail(c, http.StatusNotFound, cmd, ErrUnknownCommand)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxArgsBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			status = http.StatusRequestEntityTooLarge
		}
		s.metrics.observe(cmd, "rejected", time.Since(start))
		s.fail(c, status, cmd, fmt.Errorf("read body: %w", err))
		return
	}
	if err := validateArgs(s.schemas[cmd], raw); err != nil {
		s.metrics.observe(cmd, "rejected", time.Since(start))
		s.fail(c, http.StatusBadRequest, cmd, err)
		return
	}

	data, err := h(c.Request.Context(), raw)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errBadArgs) {
			status = http.StatusBadRequest
		}
		s.metrics.observe(cmd, "error", time.Since(start))
		s.fail(c, status, cmd, err)
		return
	}

	env := bridge.Response{OK: true}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			s.metrics.observe(cmd, "error", time.Since(start))
			s.fail(c, http.StatusInternalServerError, cmd, fmt.Errorf("encode result: %w", err))
			return
		}
		env.Data = b
	}
	s.metrics.observe(cmd, "ok", time.Since(start))
	c.JSON(http.StatusOK, env)
}

func (s *Server) fail(c *gin.Context, status int, cmd string, err error) {
	s.logger.Warn("invoke failed", "cmd", cmd, "status", status, "err", err, "id", c.GetHeader(bridge.HeaderInvokeID))
	c.AbortWithStatusJSON(status, bridge.Response{OK: false, Error: err.Error()})
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token == "" {
			c.Next()
			return
		}
		got := auth.StripBearer(c.GetHeader("Authorization"))
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			cmd := c.Param("cmd")
			if _, ok := s.commands[cmd]; !ok {
				cmd = "unknown"
			}
			s.metrics.observe(cmd, "unauthorized", 0)
			c.AbortWithStatusJSON(http.StatusUnauthorized, bridge.Response{OK: false, Error: "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
			"id", c.GetHeader(bridge.HeaderInvokeID),
		)
	}
}

// ---- commands ----

func decodeArgs(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", errBadArgs, err)
	}
	return nil
}

func (s *Server) addTodo(ctx context.Context, raw []byte) (any, error) {
	var args struct {
		Description string `json:"description"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if _, err := s.repo.Add(ctx, args.Description); err != nil {
		return nil, fmt.Errorf("Error saving todo: %w", err)
	}
	return nil, nil
}

func (s *Server) getTodos(ctx context.Context, _ []byte) (any, error) {
	todos, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("Failed to get todos %w", err)
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

func (s *Server) updateTodo(ctx context.Context, raw []byte) (any, error) {
	var args struct {
		Todo model.Todo `json:"todo"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, args.Todo); err != nil {
		return nil, fmt.Errorf("could not update todo %w", err)
	}
	return nil, nil
}

func (s *Server) deleteTodo(ctx context.Context, raw []byte) (any, error) {
	var args struct {
		ID int64 `json:"id"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, args.ID); err != nil {
		return nil, fmt.Errorf("could not delete todo %w", err)
	}
	return nil, nil
}
