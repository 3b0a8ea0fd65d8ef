package cli

import (
	"context"
	"fmt"
	"io"

	"todo-sync/internal/api"
	"todo-sync/internal/errors"
)

// SyncCommand pushes every task to the remote service
type SyncCommand struct {
	api          api.API
	out          io.Writer
	verbose      bool
	errorHandler *ErrorHandler
}

// NewSyncCommand creates a new sync command handler
func NewSyncCommand(app *App) *SyncCommand {
	return &SyncCommand{
		api:          app.api,
		out:          app.out,
		verbose:      app.config.Application.Verbose,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the sync command
func (c *SyncCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "sync", "usage: td sync")
	}

	report, err := c.api.Sync(ctx)
	if err != nil {
		return c.errorHandler.Handle("sync tasks", err)
	}

	if report.Offline {
		fmt.Fprintf(c.out, "Remote sync is disabled; %d %s kept locally\n",
			report.Total, pluralize(report.Total, "task", "tasks"))
		return nil
	}

	fmt.Fprintf(c.out, "Synced %d %s: %d created, %d updated, %d failed\n",
		report.Total, pluralize(report.Total, "task", "tasks"),
		report.Created, report.Updated, report.Failed)

	if report.Failed > 0 {
		if c.verbose {
			for _, f := range report.Failures {
				fmt.Fprintf(c.out, "  %s %s: %v\n", f.Operation, api.ShortID(f.TaskID), f.Err)
			}
		} else {
			fmt.Fprintln(c.out, "Failed tasks stay local and are sent again on the next sync (use --verbose for details)")
		}
	}
	return nil
}
