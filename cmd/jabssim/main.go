// Command jabssim runs a JABS encounter headless: the player fights on
// autopilot while AI allies and enemies act on their own.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/udisondev/jabs/internal/ai"
	"github.com/udisondev/jabs/internal/config"
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/db"
	"github.com/udisondev/jabs/internal/telemetry"
)

const (
	ConfigPath   = "config/jabssim.yaml"
	AutosaveSlot = "autosave"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfgPath := ConfigPath
	if p := os.Getenv("JABS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(cfg.AI.Debug || logLevel == slog.LevelDebug)

	slog.Info("jabssim starting", "config", cfgPath, "log_level", cfg.LogLevel)

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			return fmt.Errorf("setting up telemetry: %w", err)
		}
		defer func() {
			// ctx уже может быть отменён
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("telemetry shutdown", "err", err)
			}
		}()
		slog.Info("telemetry enabled", "service", cfg.Telemetry.ServiceName)
	}

	tables, err := loadContent(cfg.ContentPath)
	if err != nil {
		return err
	}

	var store *db.SnapshotRepository
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")
		store = database.Snapshots()
	}

	sim, err := newSimulation(ctx, cfg, tables, store)
	if err != nil {
		return err
	}
	defer sim.battle.Close()

	return sim.Run(ctx)
}

func loadContent(path string) (*data.Tables, error) {
	if path == "" {
		t, err := data.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("loading default content: %w", err)
		}
		slog.Info("content loaded", "source", "embedded")
		return t, nil
	}
	t, err := data.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	slog.Info("content loaded", "source", path)
	return t, nil
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
