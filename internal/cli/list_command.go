package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"todo-sync/internal/api"
	"todo-sync/internal/errors"
)

const displayTimeFormat = "2006-01-02 15:04:05"

// ListCommand handles the list command
type ListCommand struct {
	api          api.API
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{
		api:          app.api,
		out:          app.out,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the list command. The optional argument names a filter:
// all, active or completed.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errors.NewInvalidInputError("command", "list", "usage: td list [all|active|completed]")
	}

	var name string
	if len(args) == 1 {
		name = args[0]
	}
	filter, err := api.ParseFilter(name)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	list, err := c.api.List(ctx, filter)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}
	return c.printTasks(list)
}

// printTasks renders one row per task, newest first, followed by the
// remaining count
func (c *ListCommand) printTasks(list *api.TaskList) error {
	if len(list.Tasks) == 0 {
		fmt.Fprintln(c.out, "No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSYNCED\tCREATED\tTEXT")
	for _, task := range list.Tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			task.ShortID,
			statusLabel(task.Done),
			syncedLabel(task.Synced),
			task.CreatedAt.Local().Format(displayTimeFormat),
			task.Text)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n%d %s left\n", list.Remaining, pluralize(list.Remaining, "item", "items"))
	return nil
}

func statusLabel(done bool) string {
	if done {
		return "done"
	}
	return "open"
}

func syncedLabel(synced bool) string {
	if synced {
		return "yes"
	}
	return "no"
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
