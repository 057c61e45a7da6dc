// Package bridge carries command invocations from the view to the backend
// process and their results back.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Command names understood by the backend.
const (
	CmdAddTodo    = "add_todo"
	CmdGetTodos   = "get_todos"
	CmdUpdateTodo = "update_todo"
	CmdDeleteTodo = "delete_todo"
)

// Commands lists every command in the order the backend registers them.
var Commands = []string{CmdAddTodo, CmdGetTodos, CmdUpdateTodo, CmdDeleteTodo}

// ErrRejected matches every error the backend reported for a command.
var ErrRejected = errors.New("invocation rejected")

// Invoker issues one command and decodes its result into out (nil to discard).
type Invoker interface {
	Invoke(ctx context.Context, cmd string, args any, out any) error
}

// Response is the envelope returned for every invocation.
type Response struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Error is a failure reported by the backend for a command.
type Error struct {
	Cmd     string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Cmd, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Cmd, e.Message)
}

func (e *Error) Is(target error) bool { return target == ErrRejected }

// Decode unpacks an envelope into out, turning ok=false into an *Error.
func (r Response) Decode(cmd string, status int, out any) error {
	if !r.OK {
		msg := r.Error
		if msg == "" {
			msg = "unknown error"
		}
		return &Error{Cmd: cmd, Status: status, Message: msg}
	}
	if out == nil || len(r.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", cmd, err)
	}
	return nil
}
