package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"todo-sync/internal/api"
	"todo-sync/internal/errors"
)

// ClearCompletedCommand removes every done task
type ClearCompletedCommand struct {
	api          api.API
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewClearCompletedCommand creates a new clear-completed command handler
func NewClearCompletedCommand(app *App) *ClearCompletedCommand {
	return &ClearCompletedCommand{
		api:          app.api,
		out:          app.out,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the clear-completed command
func (c *ClearCompletedCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "clear-completed", "usage: td clear-completed")
	}

	count, err := c.api.ClearCompleted(ctx)
	if err != nil {
		return c.errorHandler.Handle("clear completed tasks", err)
	}

	fmt.Fprintf(c.out, "Cleared %d completed %s\n", count, pluralize(count, "task", "tasks"))
	return nil
}

// ClearAllCommand removes every task after confirmation
type ClearAllCommand struct {
	api          api.API
	out          io.Writer
	in           io.Reader
	skipConfirm  bool
	errorHandler *ErrorHandler
}

// NewClearAllCommand creates a new clear-all command handler. With
// skipConfirm the prompt is not shown.
func NewClearAllCommand(app *App, skipConfirm bool) *ClearAllCommand {
	return &ClearAllCommand{
		api:          app.api,
		out:          app.out,
		in:           app.in,
		skipConfirm:  skipConfirm,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the clear-all command
func (c *ClearAllCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "clear-all", "usage: td clear-all [--yes]")
	}

	if !c.skipConfirm {
		list, err := c.api.List(ctx, api.FilterAll)
		if err != nil {
			return c.errorHandler.Handle("clear all tasks", err)
		}
		if list.Total == 0 {
			fmt.Fprintln(c.out, "No tasks to clear.")
			return nil
		}

		fmt.Fprintf(c.out, "Delete all %d %s? [y/N]: ", list.Total, pluralize(list.Total, "task", "tasks"))
		var input string
		fmt.Fscanln(c.in, &input)
		if answer := strings.ToLower(strings.TrimSpace(input)); answer != "y" && answer != "yes" {
			fmt.Fprintln(c.out, "Clear cancelled.")
			return nil
		}
	}

	count, err := c.api.ClearAll(ctx)
	if err != nil {
		return c.errorHandler.Handle("clear all tasks", err)
	}

	fmt.Fprintf(c.out, "Cleared %d %s\n", count, pluralize(count, "task", "tasks"))
	return nil
}
