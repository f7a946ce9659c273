package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/tinoosan/bank/internal/accnum"
	"github.com/tinoosan/bank/internal/config"
	"github.com/tinoosan/bank/internal/console"
	"github.com/tinoosan/bank/internal/help"
	"github.com/tinoosan/bank/internal/journal"
	"github.com/tinoosan/bank/internal/metrics"
	"github.com/tinoosan/bank/internal/record"
	"github.com/tinoosan/bank/internal/service/account"
	"github.com/tinoosan/bank/internal/service/remit"
	"github.com/tinoosan/bank/internal/storage"
	"github.com/tinoosan/bank/internal/storage/flatfile"
	"github.com/tinoosan/bank/internal/storage/memory"
	pgstore "github.com/tinoosan/bank/internal/storage/postgres"
	"github.com/tinoosan/bank/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	// Logger (slog to stderr; stdout belongs to the menu)
	logger := buildLogger(cfg.LogLevel, cfg.LogFormat).With("session_id", uuid.NewString())
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	limit, _ := cfg.Limit()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("close storage", "err", err)
		}
	}()
	logger.Info("storage backend: "+cfg.Store, "data_dir", cfg.DataDir)

	j := journal.New(backend)
	accounts := account.New(record.New(backend, backend), backend, j, accnum.New(accnum.NewSource()), limit)
	con := console.New(os.Stdin, os.Stdout, console.Deps{
		Accounts: accounts,
		Remit:    remit.New(accounts),
		Help:     help.NewDesk(backend, j),
		Metrics:  metrics.New(),
		Logger:   logger,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- con.Run(ctx) }()

	select {
	case <-ctx.Done():
		logger.Info("session interrupted")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("session ended with error", "err", err)
		}
	}
}

func openBackend(ctx context.Context, cfg config.Config) (storage.Backend, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, err
		}
		return sqlite.Open(cfg.SQLitePath)
	case config.StorePostgres:
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return pg, nil
	default:
		return flatfile.Open(cfg.DataDir)
	}
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	// default to text, the terminal is shared with the menu
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
