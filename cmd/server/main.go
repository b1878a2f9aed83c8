// Package main starts the jabbercracky game server emulator: it loads the seed,
// picks a repository, and serves the game API over HTTP or HTTPS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/jabbercracky/jabbercracky-client/internal/config"
	"github.com/jabbercracky/jabbercracky-client/internal/db"
	"github.com/jabbercracky/jabbercracky-client/internal/logger"
	"github.com/jabbercracky/jabbercracky-client/internal/repository"
	"github.com/jabbercracky/jabbercracky-client/internal/server/handler/http"
	"github.com/jabbercracky/jabbercracky-client/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Parse command-line and environment configuration.
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options, zapLogger); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, options *config.ServerOptions, zapLogger *zap.Logger) error {
	maxUpload, err := options.MaxUploadBytes()
	if err != nil {
		return err
	}

	repo, closeRepo, err := newRepository(ctx, options, zapLogger)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Initialize business logic and load the seed.
	gameService := service.NewGameService(repo, zapLogger)
	seed, err := config.LoadSeed(options.Seed)
	switch {
	case errors.Is(err, os.ErrNotExist):
		zapLogger.Warn("no seed file, starting empty", zap.String("seed", options.Seed))
	case err != nil:
		return err
	default:
		if err := gameService.Seed(ctx, seed); err != nil {
			return err
		}
	}

	// Build the router with middleware and routes.
	gameHandler := &http.GameHandler{GameService: gameService, MaxUpload: maxUpload, Log: zapLogger}
	router := http.NewRouter(gameHandler, gameService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSEnabled() {
			server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}

// newRepository returns the Postgres repository when a DSN is configured and the
// in-memory one otherwise.
func newRepository(ctx context.Context, options *config.ServerOptions, zapLogger *zap.Logger) (service.GameRepository, func(), error) {
	if options.DatabaseDSN == "" {
		zapLogger.Info("using in-memory repository")
		return repository.NewMemoryRepository(), func() {}, nil
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN, zapLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot init database: %w", err)
	}

	// Close hash lists whose deadline passed.
	db.StartExpiryCloser(ctx, postgresDB, options.CloseInterval, zapLogger)

	return repository.NewPostgresRepository(postgresDB), func() { _ = postgresDB.Close() }, nil
}
