package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"todo-sync/internal/api"
	"todo-sync/internal/errors"
)

// EditCommand handles the edit command
type EditCommand struct {
	api          api.API
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{
		api:          app.api,
		out:          app.out,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the edit command. Everything after the id is the new text.
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.NewInvalidInputError("command", "edit", "usage: td edit <id> \"new text\"")
	}

	task, err := c.api.Edit(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}

	fmt.Fprintf(c.out, "Updated task %s: %s\n", task.ShortID, task.Text)
	return nil
}
