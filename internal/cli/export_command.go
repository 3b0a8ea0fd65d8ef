package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"todo-sync/internal/api"
	"todo-sync/internal/errors"
)

// Export formats
const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
)

// ExportCommand writes every task in a machine readable format
type ExportCommand struct {
	api          api.API
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App) *ExportCommand {
	return &ExportCommand{
		api:          app.api,
		out:          app.out,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the export command. The only argument is the format.
func (c *ExportCommand) Execute(ctx context.Context, args []string) error {
	format := ExportFormatCSV
	if len(args) > 1 {
		return errors.NewInvalidInputError("command", "export", "usage: td export --format csv|json")
	}
	if len(args) == 1 && args[0] != "" {
		format = strings.ToLower(args[0])
	}
	if format != ExportFormatCSV && format != ExportFormatJSON {
		return errors.NewInvalidInputError("format", format, "unsupported format")
	}

	list, err := c.api.List(ctx, api.FilterAll)
	if err != nil {
		return c.errorHandler.Handle("export tasks", err)
	}

	if format == ExportFormatJSON {
		return c.outputJSON(list)
	}
	return c.outputCSV(list)
}

func (c *ExportCommand) outputJSON(list *api.TaskList) error {
	encoder := json.NewEncoder(c.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(list); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

func (c *ExportCommand) outputCSV(list *api.TaskList) error {
	writer := csv.NewWriter(c.out)

	header := []string{"ID", "Text", "Done", "Created At", "Remote ID"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, task := range list.Tasks {
		row := []string{
			task.ID,
			task.Text,
			strconv.FormatBool(task.Done),
			task.CreatedAt.UTC().Format(time.RFC3339),
			task.RemoteID,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
