// Package client wraps the four backend commands behind typed calls.
// Failures are returned as-is; nothing here retries or validates.
package client

import (
	"context"

	"github.com/Makepad-fr/tada/internal/bridge"
	"github.com/Makepad-fr/tada/internal/model"
)

// Client is the remote todo API.
type Client struct {
	inv bridge.Invoker
}

func New(inv bridge.Invoker) *Client {
	return &Client{inv: inv}
}

type addArgs struct {
	Description string `json:"description"`
}

type updateArgs struct {
	Todo model.Todo `json:"todo"`
}

type deleteArgs struct {
	ID int64 `json:"id"`
}

// AddTodo asks the backend to create an Incomplete record.
func (c *Client) AddTodo(ctx context.Context, description string) error {
	return c.inv.Invoke(ctx, bridge.CmdAddTodo, addArgs{Description: description}, nil)
}

// GetTodos returns every record in backend order.
func (c *Client) GetTodos(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	if err := c.inv.Invoke(ctx, bridge.CmdGetTodos, nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// UpdateTodo overwrites the stored record with the same id.
func (c *Client) UpdateTodo(ctx context.Context, todo model.Todo) error {
	return c.inv.Invoke(ctx, bridge.CmdUpdateTodo, updateArgs{Todo: todo}, nil)
}

func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	return c.inv.Invoke(ctx, bridge.CmdDeleteTodo, deleteArgs{ID: id}, nil)
}
