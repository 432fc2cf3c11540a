package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/pflag"

	"github.com/rickgao/listing-watch/internal/config"
	"github.com/rickgao/listing-watch/internal/database"
	"github.com/rickgao/listing-watch/internal/exchange"
	"github.com/rickgao/listing-watch/internal/metrics"
	"github.com/rickgao/listing-watch/internal/notify"
	"github.com/rickgao/listing-watch/internal/reconcile"
	"github.com/rickgao/listing-watch/internal/store"
	"github.com/rickgao/listing-watch/internal/version"
	"github.com/rickgao/listing-watch/internal/watcher"
)

func main() {
	configPath := pflag.StringP("config", "c", "configs/watcher.yaml", "path to config file")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "config", *configPath, "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting watcher",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to the state store
	st, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Build exchange clients in configured order
	var clients []exchange.Client
	for _, exCfg := range cfg.EnabledExchanges() {
		client, err := exchange.New(exCfg, exchange.Options{
			Timeout: cfg.Scheduler.FetchTimeout,
			Logger:  logger.With("exchange", exCfg.Name),
		})
		if err != nil {
			logger.Error("failed to create exchange client", "exchange", exCfg.Name, "error", err)
			os.Exit(1)
		}
		clients = append(clients, client)
	}

	check, err := reconcile.CheckByName(cfg.Scheduler.TradingCheck)
	if err != nil {
		logger.Error("invalid trading check", "error", err)
		os.Exit(1)
	}

	// Notification channels are built once and reused by every cycle
	routes, err := notify.BuildRoutes(cfg.Notify, logger)
	if err != nil {
		logger.Error("failed to build notification channels", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	dispatcher := notify.NewDispatcher(routes, cfg.Notify.Concurrency, m, logger,
		notify.WithSendTimeout(cfg.Notify.SendTimeout),
	)
	if len(routes) == 0 {
		logger.Warn("no notification channels enabled, transitions will only be logged")
	}

	processor := watcher.NewProcessor(st, reconcile.New(check), dispatcher, m, cfg.Scheduler.FetchTimeout, logger)
	scheduler := watcher.New(watcher.Config{
		Interval:            cfg.Scheduler.Interval,
		ExchangeConcurrency: cfg.Scheduler.ExchangeConcurrency,
	}, clients, st, processor, m, logger)

	// Start health and metrics server
	healthServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           createHealthHandler(st, scheduler, m, cfg.Metrics.Path),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Metrics.Port, "metrics_path", cfg.Metrics.Path)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Warn("sd_notify failed", "error", err)
	} else if ok {
		logger.Debug("notified systemd of readiness")
	}

	logger.Info("watcher running",
		"exchanges", len(clients),
		"channels", dispatcher.Channels(),
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	runErr := scheduler.Run(ctx)

	logger.Info("shutting down...")
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	if runErr != nil {
		logger.Error("watcher failed", "error", runErr)
		st.Close()
		os.Exit(1)
	}

	logger.Info("watcher stopped")
}

// newLogger builds the process logger from config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// openStore connects the configured backend. Postgres is retried at a fixed
// interval until ConnectTimeout expires.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		logger.Info("connecting to database",
			"host", cfg.Postgres.Host,
			"port", cfg.Postgres.Port,
			"database", cfg.Postgres.Name,
		)
		pool, err := database.ConnectWithRetry(ctx, cfg.Postgres, cfg.ConnectRetryInterval, cfg.ConnectTimeout, nil, logger)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database connected")
		return pg, nil

	case config.DriverSQLite:
		logger.Info("opening sqlite store", "path", cfg.SQLite.Path)
		return store.OpenSQLite(cfg.SQLite.Path)

	case config.DriverMemory:
		logger.Warn("using in-memory store, state is lost on restart and every start is a seed run")
		return store.NewMemory(), nil

	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}
