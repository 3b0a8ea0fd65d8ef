package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"todo-sync/internal/config"
)

// ConfigCommand prints the effective configuration with secrets masked
type ConfigCommand struct {
	config     *config.Config
	configFile string
	out        io.Writer
}

// NewConfigCommand creates a new config command handler. configFile is the
// file the loader read, empty when none was found.
func NewConfigCommand(cfg *config.Config, configFile string, out io.Writer) *ConfigCommand {
	return &ConfigCommand{config: cfg, configFile: configFile, out: out}
}

// Execute runs the config command
func (c *ConfigCommand) Execute(ctx context.Context) error {
	source := c.configFile
	if source == "" {
		source = "none (defaults, environment and flags)"
	}
	fmt.Fprintf(c.out, "# config file: %s\n", source)
	fmt.Fprintf(c.out, "# database: %s\n", c.config.GetDatabasePath())

	schema, err := c.schemaVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "# schema version: %s\n", schema)

	encoder := yaml.NewEncoder(c.out)
	encoder.SetIndent(2)
	if err := encoder.Encode(c.config.Redacted()); err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	return encoder.Close()
}

// schemaVersion opens an existing cache file to read its schema version.
// A missing or in-memory cache is reported without being created.
func (c *ConfigCommand) schemaVersion(ctx context.Context) (string, error) {
	path := c.config.GetDatabasePath()
	if path == config.MemoryDatabase {
		return "in-memory", nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "none (cache not created yet)", nil
	}

	repo, err := config.CreateRepository(c.config)
	if err != nil {
		return "", NewErrorHandler().Handle("open task cache", err)
	}
	defer repo.Close()

	version, err := repo.SchemaVersion(ctx)
	if err != nil {
		return "", NewErrorHandler().Handle("read cache schema version", err)
	}
	return fmt.Sprintf("%d", version), nil
}
