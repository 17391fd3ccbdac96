package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/managed-db-mcp/internal/client"
	"github.com/bobmcallan/managed-db-mcp/internal/common"
	"github.com/bobmcallan/managed-db-mcp/internal/config"
	"github.com/bobmcallan/managed-db-mcp/internal/mcp"
	"github.com/bobmcallan/managed-db-mcp/internal/telemetry"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Client     *client.ManagedDBClient
	Dispatcher *mcp.Dispatcher
	MCPServer  *server.MCPServer
	Server     *mcp.Server
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	observer, err := telemetry.NewGlobalObserver()
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry observer: %w", err)
	}

	a.Client = client.NewManagedDBClient(cfg.API.URL, cfg.API.GetTimeout(), logger)
	a.Dispatcher = mcp.NewDispatcher(a.Client, logger, mcp.WithObserver(observer))
	a.MCPServer = mcp.NewMCPServer(a.Dispatcher, cfg.Server.Name, common.GetVersion())
	a.Server = mcp.NewServer(a.MCPServer, a.Dispatcher, logger)

	logger.Info().
		Str("api_url", a.Client.BaseURL()).
		Str("timeout", cfg.API.GetTimeout().String()).
		Int("tools", len(mcp.Catalog())).
		Msg("application initialization complete")

	return a, nil
}

// ServeStdio runs the MCP session over the given streams until in closes or ctx ends.
func (a *App) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return a.Server.ServeStdio(ctx, in, out)
}

// HTTPHandler returns the streamable HTTP handler for the MCP endpoint.
func (a *App) HTTPHandler() http.Handler {
	return a.Server.HTTPHandler()
}

// Close closes all application resources.
func (a *App) Close() error {
	return nil
}
