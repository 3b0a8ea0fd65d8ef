package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"todo-sync/internal/api"
	"todo-sync/internal/config"
	"todo-sync/internal/logging"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd          *cobra.Command
	build        Builder
	config       *config.Config
	configFile   string
	out          io.Writer
	errOut       io.Writer
	in           io.Reader
	errorHandler *ErrorHandler
}

// NewRootCommand creates the root cobra command with global flags. build is
// called once per command invocation, after configuration is resolved.
func NewRootCommand(build Builder, out, errOut io.Writer) *RootCommand {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	root := &RootCommand{
		build:        build,
		out:          out,
		errOut:       errOut,
		in:           os.Stdin,
		errorHandler: NewErrorHandler(),
	}

	root.cmd = &cobra.Command{
		Use:   "td",
		Short: "A local-first todo list that syncs with a remote task service",
		Long: `td keeps a todo list in a local cache and mirrors it to a remote task
service whenever one is configured and reachable. Every change is saved
locally first; remote failures are logged and never lose local work.

EXAMPLES:
  td add "buy milk"                        # Add a task (local until the next sync)
  td list                                  # List all tasks, newest first
  td list --active                         # Only tasks still to do
  td toggle 3f2a                           # Mark a task done (ids accept unique prefixes)
  td edit 3f2a "buy oat milk"              # Change a task's text
  td delete 3f2a                           # Remove a task
  td clear-completed                       # Remove every done task
  td sync                                  # Push all tasks to the remote service
  td export --format json > tasks.json     # Export tasks

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > config file > defaults
  The config file is config.yaml in the database directory, or the path in TD_CONFIG_FILE.

    TD_DATABASE_DIR                        Cache directory (default: ~/.td)
    TD_DATABASE_FILENAME                   Cache filename, or :memory: (default: td.db)
    TD_REMOTE_BASE_URL                     Remote resource URL; empty runs offline
    TD_REMOTE_API_KEY / TD_REMOTE_API_SECRET  Remote credentials
    TD_REMOTE_TIMEOUT                      Per-request remote timeout (default: none)
    TD_SYNC_LOAD_STRATEGY                  cache or remote (default: cache)
    TD_LOG_LEVEL / TD_LOG_FORMAT           Log level and text|json format (default: warn, text)
    TD_APPLICATION_TIMEOUT                 Command timeout (default: 60s)
    TD_DEBUG                               Force debug logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig()
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

// ExecuteContext runs the root command with a parent context
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// SetArgs overrides the command line arguments
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// SetInput replaces the reader used for confirmation prompts
func (r *RootCommand) SetInput(in io.Reader) {
	r.in = in
}

// Config returns the configuration resolved for the last invocation
func (r *RootCommand) Config() *config.Config {
	return r.config
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// Cache configuration
	flags.String("db-dir", "", "Cache directory (overrides TD_DATABASE_DIR)")
	flags.String("db-filename", "", "Cache filename, or :memory: (overrides TD_DATABASE_FILENAME)")

	// Remote and sync configuration
	flags.String("remote-url", "", "Remote resource URL (overrides TD_REMOTE_BASE_URL)")
	flags.String("load-strategy", "", "Initial load strategy: cache or remote (overrides TD_SYNC_LOAD_STRATEGY)")
	flags.Bool("offline", false, "Never contact the remote service (overrides TD_APPLICATION_OFFLINE)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Command timeout (overrides TD_APPLICATION_TIMEOUT)")
	flags.String("log-level", "", "Log level: debug, info, warn or error (overrides TD_LOG_LEVEL)")
	flags.BoolP("verbose", "v", false, "Enable verbose output (overrides TD_APPLICATION_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	addCmd := &cobra.Command{
		Use:   "add [task text]",
		Short: "Add a task",
		Long:  "Add a task to the local list. It reaches the remote service on the next sync.",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			return NewAddCommand(app).Execute(ctx, args)
		}),
	}

	listCmd := &cobra.Command{
		Use:   "list [all|active|completed]",
		Short: "List tasks",
		Long: `List tasks newest first, followed by the number of tasks still to do.

Examples:
  td list                    # All tasks
  td list --active           # Tasks not done yet
  td list completed          # Done tasks`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			if active, _ := cmd.Flags().GetBool("active"); active {
				filter = string(api.FilterActive)
			}
			if completed, _ := cmd.Flags().GetBool("completed"); completed {
				filter = string(api.FilterCompleted)
			}
			return NewListCommand(app).Execute(ctx, []string{filter})
		}),
	}
	listCmd.Flags().Bool("active", false, "Show only tasks that are not done")
	listCmd.Flags().Bool("completed", false, "Show only done tasks")
	listCmd.MarkFlagsMutuallyExclusive("active", "completed")

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			return NewShowCommand(app).Execute(ctx, args)
		}),
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle [id]",
		Short: "Flip a task between done and not done",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			return NewToggleCommand(app).Execute(ctx, args)
		}),
	}

	editCmd := &cobra.Command{
		Use:   "edit [id] [new text]",
		Short: "Replace a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			return NewEditCommand(app).Execute(ctx, args)
		}),
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			return NewDeleteCommand(app).Execute(ctx, args)
		}),
	}

	clearCompletedCmd := &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every done task",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			return NewClearCompletedCommand(app).Execute(ctx, args)
		}),
	}

	clearAllCmd := &cobra.Command{
		Use:   "clear-all",
		Short: "Delete every task",
		Long:  "Delete every task locally and on the remote service. Asks for confirmation unless --yes is given.",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			return NewClearAllCommand(app, yes).Execute(ctx, args)
		}),
	}
	clearAllCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Push every task to the remote service",
		Long:  "Create unsynced tasks remotely and overwrite synced ones. Failures are reported and the tasks stay local.",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			return NewSyncCommand(app).Execute(ctx, args)
		}),
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return NewExportCommand(app).Execute(ctx, []string{format})
		}),
	}
	exportCmd.Flags().StringP("format", "f", ExportFormatCSV, "Output format: csv or json")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewConfigCommand(r.config, r.configFile, r.out).Execute(cmd.Context())
		},
	}

	r.cmd.AddCommand(addCmd, listCmd, showCmd, toggleCmd, editCmd, deleteCmd,
		clearCompletedCmd, clearAllCmd, syncCmd, exportCmd, configCmd)
}

// withApp wraps a handler so that it runs against a freshly built and
// initialized API, within the configured command timeout
func (r *RootCommand) withApp(handler func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := logging.Setup(r.logConfig(), r.errOut)
		r.errorHandler.WithLogger(logger)

		apiInstance, closer, err := r.build(r.config, logger)
		if err != nil {
			return r.errorHandler.Handle("open task store", err)
		}
		if closer != nil {
			defer func() {
				if cerr := closer.Close(); cerr != nil {
					logger.Warn("failed to close task store", "error", cerr)
				}
			}()
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
		defer cancel()

		if err := apiInstance.Initialize(ctx); err != nil {
			return r.errorHandler.Handle("load tasks", err)
		}

		app := NewApp(apiInstance, r.config, r.out).WithInput(r.in)
		return handler(ctx, app, cmd, args)
	}
}

// logConfig raises the level to info for --verbose unless a more detailed
// level is already configured
func (r *RootCommand) logConfig() config.LogConfig {
	cfg := r.config.Log
	if r.config.Application.Verbose && !strings.EqualFold(cfg.Level, "debug") {
		cfg.Level = "info"
	}
	return cfg
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// loadConfig resolves configuration from defaults, file, environment and
// the flags that were explicitly set
func (r *RootCommand) loadConfig() error {
	loader := config.NewLoader()
	cfg, err := loader.LoadWithOverrides(overridesFromFlags(r.cmd.PersistentFlags()))
	if err != nil {
		return r.errorHandler.Handle("load configuration", err)
	}
	r.config = cfg
	r.configFile = loader.ConfigFileUsed()
	return nil
}

// overridesFromFlags maps changed flags onto config overrides. Flags left at
// their zero value do not override anything.
func overridesFromFlags(flags *pflag.FlagSet) *config.ConfigOverrides {
	return &config.ConfigOverrides{
		DBDir:        stringFlag(flags, "db-dir"),
		DBFilename:   stringFlag(flags, "db-filename"),
		RemoteURL:    stringFlag(flags, "remote-url"),
		LoadStrategy: stringFlag(flags, "load-strategy"),
		LogLevel:     stringFlag(flags, "log-level"),
		Timeout:      durationFlag(flags, "app-timeout"),
		Verbose:      boolFlag(flags, "verbose"),
		Offline:      boolFlag(flags, "offline"),
	}
}

func stringFlag(flags *pflag.FlagSet, name string) *string {
	if !flags.Changed(name) {
		return nil
	}
	v, err := flags.GetString(name)
	if err != nil {
		return nil
	}
	return &v
}

func durationFlag(flags *pflag.FlagSet, name string) *time.Duration {
	if !flags.Changed(name) {
		return nil
	}
	v, err := flags.GetDuration(name)
	if err != nil {
		return nil
	}
	return &v
}

func boolFlag(flags *pflag.FlagSet, name string) *bool {
	if !flags.Changed(name) {
		return nil
	}
	v, err := flags.GetBool(name)
	if err != nil {
		return nil
	}
	return &v
}
