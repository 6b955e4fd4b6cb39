package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"connsettings/internal/agent"
	"connsettings/internal/config"
	"connsettings/internal/handler"
	"connsettings/internal/hub"
	"connsettings/internal/logging"
	"connsettings/internal/repository/sqlite"
	"connsettings/internal/service"
	"connsettings/internal/vault"
	"connsettings/internal/watcher"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the connection store HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().String("db", "", "SQLite database path (overrides config)")
	cmd.Flags().String("keyfiles", "", "Keyfile directory (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, cfgPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Database.Path = v
	}
	if v, _ := cmd.Flags().GetString("keyfiles"); v != "" {
		cfg.Keyfiles.Dir = v
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	if cfgPath != "" {
		logger.Info("config loaded", "path", cfgPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()
	logger.Info("database opened", "path", cfg.Database.Path)

	v, err := vault.Open(cfg.Secrets.KeyFile, cfg.Secrets.Passphrase)
	if err != nil {
		return fmt.Errorf("failed to open secret key: %w", err)
	}

	secretAgent, closeAgent, err := openAgent(ctx, cfg.Agent)
	if err != nil {
		return err
	}
	defer closeAgent()

	eventBus := service.NewEventBus()
	svc := service.NewConnectionService(repo, v, secretAgent, eventBus)
	svc.SetLogger(logger.With("component", "service"))
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("failed to load connections: %w", err)
	}

	// SSE hub fed from the event bus
	sseHub := hub.New()
	sseHub.SetLogger(logger.With("component", "hub"))
	go sseHub.Run(ctx)

	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(string(event.Type), event.Payload)
			case <-ctx.Done():
				return
			}
		}
	}()

	if dir := cfg.Keyfiles.Dir; dir != "" {
		reconcile := func() {
			res, err := svc.ReconcileKeyfiles(ctx, dir)
			if err != nil {
				logger.Error("keyfile reconcile failed", "dir", dir, "error", err)
				return
			}
			logger.Info("keyfiles reconciled", "dir", dir,
				"added", res.Added, "updated", res.Updated, "removed", res.Removed, "failed", res.Failed)
		}
		reconcile()

		if cfg.Keyfiles.Watch {
			w := watcher.New(dir, func(string) { reconcile() }).
				WithDebounce(cfg.Keyfiles.Debounce.Duration()).
				WithLogger(logger.With("component", "watcher"))
			go func() {
				if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("keyfile watcher stopped", "error", err)
				}
			}()
		}
	}

	connHandler := handler.NewConnectionHandler(svc)
	connHandler.SetLogger(logger.With("component", "handler"))

	mux := http.NewServeMux()
	connHandler.Register(mux)
	mux.Handle("GET /events", sseHub)

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     handler.Logging(handler.Recover(mux, logger), logger),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

// openAgent builds the configured secret agent. The returned close
// function is always safe to call.
func openAgent(ctx context.Context, cfg config.AgentConfig) (agent.Agent, func(), error) {
	switch cfg.Backend {
	case config.AgentNone:
		return nil, func() {}, nil
	case config.AgentRedis:
		r, err := agent.NewRedis(ctx, agent.RedisConfig{Addr: cfg.RedisAddr, KeyPrefix: cfg.KeyPrefix})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect secret agent: %w", err)
		}
		return r, func() {
			if err := r.Close(); err != nil {
				slog.Warn("closing secret agent", "error", err)
			}
		}, nil
	}
	return agent.NewMemory(), func() {}, nil
}
