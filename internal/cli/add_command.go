package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"todo-sync/internal/api"
	"todo-sync/internal/errors"
)

// AddCommand handles the add command
type AddCommand struct {
	api          api.API
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App) *AddCommand {
	return &AddCommand{
		api:          app.api,
		out:          app.out,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the add command
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("command", "add", "usage: td add \"your task here\"")
	}
	text := strings.Join(args, " ")

	task, err := c.api.Add(ctx, text)
	if err != nil {
		return c.errorHandler.Handle("add task", err)
	}

	fmt.Fprintf(c.out, "Added task %s: %s\n", task.ShortID, task.Text)
	return nil
}
