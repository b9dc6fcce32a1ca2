package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/notifications-monitor/internal/api"
	"github.com/dgnsrekt/notifications-monitor/internal/connector"
	"github.com/dgnsrekt/notifications-monitor/internal/scheduler"
	"github.com/dgnsrekt/notifications-monitor/internal/server"
	"github.com/dgnsrekt/notifications-monitor/internal/sink"
	"github.com/dgnsrekt/notifications-monitor/internal/ws"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the notifications feed until interrupted",
		Long: `Poll the notifications feed on the configured interval, draining backlog
pages immediately, and forward every notification to the enabled sinks.

Examples:
  # Run with a config file
  notifications-monitor run --config configs/default.yaml

  # Override the poll interval from the environment
  NOTIFMON_POLL_INTERVAL=30s notifications-monitor run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context())
		},
	}
}

func runDaemon(ctx context.Context) error {
	logger.Info("configuration loaded",
		zap.String("endpoint", cfg.API.BaseURL+cfg.API.Path),
		zap.Duration("pollInterval", cfg.Poll.Interval),
		zap.Bool("runOnStartup", cfg.Poll.RunOnStartup),
		zap.Bool("serverEnabled", cfg.Server.Enabled),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var hub *ws.Hub
	var broadcaster sink.Broadcaster
	if cfg.Sinks.WebSocket.Enabled {
		hub = ws.NewHub("notifications", logger.Named("ws"))
		go hub.Run(ctx)
		broadcaster = hub
	}

	sinks, err := sink.Build(cfg.Sinks, broadcaster, logger.Named("sink"))
	if err != nil {
		return err
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			logger.Warn("closing sinks", zap.Error(err))
		}
	}()
	sinks.Start(ctx)

	logger.Info("sinks configured", zap.Strings("sinks", sinks.Names()))

	client := newAPIClient()
	conn := connector.New(client, sinks.Sinks, logger.Named("connector"))

	connDone := make(chan struct{})
	go func() {
		defer close(connDone)
		conn.Run(ctx)
	}()

	go scheduler.New(conn, cfg.Poll.Interval, cfg.Poll.RunOnStartup, logger.Named("scheduler")).Run(ctx)

	var httpServer *http.Server
	if cfg.Server.Enabled {
		var wsHandler http.Handler
		if hub != nil {
			wsHandler = hub
		}
		httpServer = &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      server.NewRouter(conn, wsHandler, logger.Named("http")),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		}

		// Start server in goroutine
		go func() {
			logger.Info("starting server", zap.String("addr", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server error", zap.Error(err))
				cancel()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down...")

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}

	// An in-flight fetch observes the cancelled context and fails; wait for it
	// so sinks are not closed under the connector.
	<-connDone

	status := conn.Status()
	logger.Info("stopped",
		zap.String("cursor", status.Cursor),
		zap.Uint64("cycles", status.Cycles),
		zap.Uint64("forwarded", status.Forwarded),
	)
	return nil
}

func newAPIClient() *api.HTTPClient {
	return api.NewClient(api.Options{
		BaseURL:       cfg.API.BaseURL,
		Path:          cfg.API.Path,
		APIKey:        cfg.API.APIKey,
		RatePerSecond: cfg.API.RatePerSecond,
		Timeout:       cfg.API.Timeout(),
		RetryDelay:    cfg.API.RetryDelayDuration(),
		RetryCount:    cfg.API.RetryCount,
	}, logger.Named("api"))
}
