package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"artist-media/config"
	"artist-media/database"
	"artist-media/internal/cli"
	"artist-media/internal/ctxlog"
	"artist-media/internal/domain/catalog"
	"artist-media/internal/media/registry"
	"artist-media/internal/media/rendervariations"
	"artist-media/internal/media/storage"
)

// main is the entrypoint for the rendervariations management command.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		if rendervariations.IsCommandError(err) {
			fmt.Fprintf(os.Stderr, "CommandError: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the command so tests can drive it without exiting.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Reject malformed field paths before touching configuration or the database.
	if _, err := rendervariations.ParseFieldPaths(cfg.FieldPaths); err != nil {
		return err
	}

	logger, err := ctxlog.New(errW, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}
	slog.SetDefault(logger)
	ctx = ctxlog.WithLogger(ctx, logger)

	config.LoadEnv()

	reg := catalog.NewRegistry(catalog.Storages{
		Media:   storage.NewFileSystem(config.MEDIA_ROOT, config.MEDIA_URL),
		Archive: storage.NewFileSystem(config.ARCHIVE_ROOT, config.ARCHIVE_URL),
	})
	overrides, err := registry.LoadOverrides(config.VARIATIONS_FILE)
	if err != nil {
		return err
	}
	if err := reg.Apply(overrides); err != nil {
		return err
	}

	if err := database.InitDB(config.DB_URL, false); err != nil {
		return err
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = config.RENDER_WORKERS
	}

	cmd := rendervariations.New(database.DB, reg)
	if !cfg.NoProgress {
		cmd.Reporter = rendervariations.NewProgressBar(errW)
	}

	sum, err := cmd.Run(ctx, rendervariations.Options{
		FieldPaths:    cfg.FieldPaths,
		Replace:       cfg.Replace,
		IgnoreMissing: cfg.IgnoreMissing,
		Workers:       workers,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(outW, "Rendered %d variations of %d files (%d already present, %d missing sources).\n",
		sum.Rendered, sum.Files, sum.Skipped, sum.Missing)
	return nil
}
