package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"todo-sync/internal/api"
	"todo-sync/internal/errors"
)

// ShowCommand prints the details of a single task
type ShowCommand struct {
	api          api.API
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewShowCommand creates a new show command handler
func NewShowCommand(app *App) *ShowCommand {
	return &ShowCommand{
		api:          app.api,
		out:          app.out,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the show command
func (c *ShowCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "show", "usage: td show <id>")
	}

	task, err := c.api.Get(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("show task", err)
	}

	remoteID := task.RemoteID
	if remoteID == "" {
		remoteID = "-"
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", task.ID)
	fmt.Fprintf(w, "Text:\t%s\n", task.Text)
	fmt.Fprintf(w, "Status:\t%s\n", statusLabel(task.Done))
	fmt.Fprintf(w, "Created:\t%s\n", task.CreatedAt.Local().Format(displayTimeFormat))
	fmt.Fprintf(w, "Remote ID:\t%s\n", remoteID)
	return w.Flush()
}
