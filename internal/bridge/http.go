package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// HeaderInvokeID carries a per-call id so both sides can correlate logs.
const HeaderInvokeID = "X-Invoke-Id"

// HTTPInvoker posts each command to {Base}/invoke/{cmd}.
type HTTPInvoker struct {
	Base   string
	Token  string
	Client *http.Client
	Logger *log.Logger
}

// NewHTTPInvoker builds an invoker for base. A zero timeout means none.
func NewHTTPInvoker(base, token string, timeout time.Duration, logger *log.Logger) *HTTPInvoker {
	return &HTTPInvoker{
		Base:   strings.TrimRight(base, "/"),
		Token:  token,
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

func (h *HTTPInvoker) Invoke(ctx context.Context, cmd string, args any, out any) error {
	if args == nil {
		args = struct{}{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%s: encode args: %w", cmd, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Base+"/invoke/"+cmd, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	id := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderInvokeID, id)
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	start := time.Now()
	resp, err := h.client().Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", cmd, err)
	}
	if h.Logger != nil {
		h.Logger.Debug("invoke", "cmd", cmd, "id", id, "status", resp.StatusCode, "took", time.Since(start))
	}

	var env Response
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Cmd: cmd, Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	return env.Decode(cmd, resp.StatusCode, out)
}

func (h *HTTPInvoker) client() *http.Client {
	if h.Client == nil {
		return http.DefaultClient
	}
	return h.Client
}
