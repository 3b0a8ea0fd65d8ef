package cli

import (
	"context"
	"fmt"
	"io"

	"todo-sync/internal/api"
	"todo-sync/internal/errors"
)

// ToggleCommand handles the toggle command
type ToggleCommand struct {
	api          api.API
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewToggleCommand creates a new toggle command handler
func NewToggleCommand(app *App) *ToggleCommand {
	return &ToggleCommand{
		api:          app.api,
		out:          app.out,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the toggle command
func (c *ToggleCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "toggle", "usage: td toggle <id>")
	}

	task, err := c.api.Toggle(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("toggle task", err)
	}

	state := "not done"
	if task.Done {
		state = "done"
	}
	fmt.Fprintf(c.out, "Marked %s as %s: %s\n", task.ShortID, state, task.Text)
	return nil
}
