package cli

import (
	"context"
	"fmt"
	"io"

	"todo-sync/internal/api"
	"todo-sync/internal/errors"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	api          api.API
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{
		api:          app.api,
		out:          app.out,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the delete command
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "delete", "usage: td delete <id>")
	}

	task, err := c.api.Delete(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}

	fmt.Fprintf(c.out, "Deleted task %s: %s\n", task.ShortID, task.Text)
	return nil
}
