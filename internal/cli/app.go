package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"todo-sync/internal/api"
	"todo-sync/internal/config"
	"todo-sync/internal/remote"
	"todo-sync/internal/services"
)

// App represents the main CLI application
type App struct {
	api    api.API
	config *config.Config
	out    io.Writer
	in     io.Reader
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(api api.API, cfg *config.Config, out io.Writer) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if out == nil {
		out = os.Stdout
	}
	return &App{
		api:    api,
		config: cfg,
		out:    out,
		in:     os.Stdin,
	}
}

// WithInput replaces the reader used for confirmation prompts
func (a *App) WithInput(in io.Reader) *App {
	a.in = in
	return a
}

// Builder wires an API from the effective configuration. The returned
// closer releases the local cache.
type Builder func(cfg *config.Config, logger *slog.Logger) (api.API, io.Closer, error)

// BuildAPI is the production Builder: sqlite cache, optional remote client,
// sync engine.
func BuildAPI(cfg *config.Config, logger *slog.Logger) (api.API, io.Closer, error) {
	repo, err := config.CreateRepository(cfg)
	if err != nil {
		return nil, nil, err
	}

	var client services.RemoteClient
	if cfg.RemoteEnabled() {
		httpClient, err := remote.NewClient(cfg.Remote, logger)
		if err != nil {
			repo.Close()
			return nil, nil, fmt.Errorf("failed to configure remote client: %w", err)
		}
		client = httpClient
	} else {
		logger.Debug("remote disabled, running offline",
			"base_url", cfg.Remote.BaseURL,
			"offline", cfg.Application.Offline)
	}

	engine := services.NewSyncEngine(repo, client,
		services.WithLoadStrategy(cfg.Sync.LoadStrategy),
		services.WithLogger(logger))

	return api.New(engine), repo, nil
}
