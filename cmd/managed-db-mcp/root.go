package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/managed-db-mcp/internal/app"
	"github.com/bobmcallan/managed-db-mcp/internal/common"
	"github.com/bobmcallan/managed-db-mcp/internal/config"
	"github.com/bobmcallan/managed-db-mcp/internal/server"
	"github.com/bobmcallan/managed-db-mcp/internal/telemetry"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "managed-db-mcp",
		Short: "MCP server for the Managed DB control plane",
		Long: "managed-db-mcp exposes Managed DB project administration (projects, tables, " +
			"migrations, backups) as MCP tools over stdio or streamable HTTP.",
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.Flags().StringP("config", "c", "managed-db-mcp.toml", "Path to config file")
	cmd.Flags().Bool("http", false, "Serve streamable HTTP instead of stdio")
	cmd.Flags().IntP("port", "p", 0, "HTTP port (overrides config)")
	cmd.Flags().String("api-url", "", "Managed DB API base URL (overrides config)")

	cmd.AddCommand(newToolsCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	port, _ := cmd.Flags().GetInt("port")
	apiURL, _ := cmd.Flags().GetString("api-url")

	cfg, err := config.LoadFromFiles(configFile)
	if err != nil {
		return nil, err
	}
	config.ApplyFlagOverrides(cfg, apiURL, port)
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)
	logger.Info().
		Str("version", common.GetFullVersion()).
		Str("api_url", cfg.API.URL).
		Msg("configuration loaded")

	shutdownTelemetry, err := telemetry.Setup(cmd.Context(), cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("failed to initialize telemetry")
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Warn().Str("error", err.Error()).Msg("telemetry shutdown failed")
		}
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("failed to initialize application")
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if useHTTP, _ := cmd.Flags().GetBool("http"); useHTTP {
		return serveHTTP(ctx, application, cfg.Server.Port, logger)
	}
	return serveStdio(ctx, application, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
}

// serveStdio returns when the client closes stdin or a shutdown signal arrives.
func serveStdio(ctx context.Context, a *app.App, in io.Reader, out io.Writer, logger *common.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.ServeStdio(ctx, in, out) }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Str("error", err.Error()).Msg("stdio server failed")
		}
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
		return nil
	}
}

func serveHTTP(ctx context.Context, a *app.App, port int, logger *common.Logger) error {
	srv := server.New(port, a.HTTPHandler(), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	logger.Info().Str("url", fmt.Sprintf("http://localhost:%d/mcp", port)).Msg("server ready")

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Str("error", err.Error()).Msg("server failed to start")
		}
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
