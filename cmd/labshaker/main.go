package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/erazemk/labshaker/internal/api"
	"github.com/erazemk/labshaker/internal/backup"
	"github.com/erazemk/labshaker/internal/blob"
	"github.com/erazemk/labshaker/internal/booking"
	"github.com/erazemk/labshaker/internal/config"
	"github.com/erazemk/labshaker/internal/db"
	"github.com/erazemk/labshaker/internal/metrics"
	"github.com/erazemk/labshaker/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger installs the level router as the default logger, mirroring
// every level to logPath when it is set. The returned func closes the file.
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	cleanup := func() {}
	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	slog.SetDefault(slog.New(&levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}))
	return cleanup, nil
}

func main() {
	args := os.Args[1:]
	command := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	var restoreKey string
	if command == "restore" {
		if len(args) == 0 || strings.HasPrefix(args[0], "-") {
			fmt.Fprintln(os.Stderr, "restore needs a backup key (see: labshaker backups)")
			os.Exit(1)
		}
		restoreKey, args = args[0], args[1:]
	}

	envFile := os.Getenv(config.EnvPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	cfg, err := config.Load(args, envFile)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(os.Stdout, config.Usage)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n%s", err, config.Usage)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(command, restoreKey, cfg); err != nil {
		slog.Error(command+" failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(command, restoreKey string, cfg config.Config) error {
	ctx := context.Background()

	database, st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	blobs, err := openBlobs(ctx, cfg)
	if err != nil {
		return err
	}

	switch command {
	case "serve":
		return serve(ctx, cfg, st, blobs)
	case "backup":
		key, err := backup.Write(ctx, st, blobs, time.Now())
		if err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	case "backups":
		keys, err := backup.List(ctx, blobs)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	case "restore":
		res, err := backup.Restore(ctx, blobs, restoreKey, booking.NewService(st))
		if err != nil {
			return err
		}
		fmt.Printf("restored %d devices, %d reservations (%d kept as stored)\n",
			res.Devices, res.Reservations, res.Kept)
		for _, sk := range res.Skipped {
			fmt.Printf("skipped %s: %s\n", sk.ID, sk.Reason)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// openStore opens the configured database, ensures its schema and wraps it
// in the entity store.
func openStore(ctx context.Context, cfg config.Config) (*sql.DB, *store.SQL, error) {
	var (
		database *sql.DB
		dialect  db.Dialect
		err      error
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dialect = db.Postgres
		database, err = db.OpenPostgres(ctx, cfg.PostgresDSN)
	default:
		dialect = db.SQLite
		database, err = db.Open(cfg.DBPath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.EnsureSchema(database, dialect); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("ensuring schema: %w", err)
	}
	st, err := store.NewSQL(ctx, database, dialect)
	if err != nil {
		database.Close()
		return nil, nil, err
	}

	slog.Info("database ready", "driver", dialect.Name)
	return database, st, nil
}

func openBlobs(ctx context.Context, cfg config.Config) (blob.Store, error) {
	switch cfg.BlobDriver {
	case blob.DriverS3:
		slog.Info("blob store ready", "driver", "s3", "bucket", cfg.S3.Bucket)
		return blob.NewS3(ctx, cfg.S3)
	case blob.DriverMemory:
		slog.Warn("blob store is in memory, photos and backups are lost on exit")
		return blob.NewMemory(), nil
	default:
		slog.Info("blob store ready", "driver", "fs", "dir", cfg.BlobDir)
		return blob.NewFS(cfg.BlobDir)
	}
}

func serve(ctx context.Context, cfg config.Config, st *store.SQL, blobs blob.Store) error {
	// Tokens stay valid across restarts because the secret lives in the database.
	secret, err := st.Secret(ctx)
	if err != nil {
		return fmt.Errorf("loading token secret: %w", err)
	}

	m := metrics.New()
	handler := api.NewRouter(api.Options{
		Service:        booking.NewService(st, booking.WithRecorder(m)),
		Blobs:          blobs,
		Metrics:        m,
		JWTSecret:      secret,
		LoginPerMinute: cfg.LoginPerMinute,
		LoginBurst:     cfg.LoginBurst,
		CORSOrigins:    cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
