package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"gridlab/domains"
	"gridlab/internal"
	"gridlab/observability"
	"gridlab/repositories"
	"gridlab/runtime"
	"gridlab/runtime/workers"
	"gridlab/services"
	"gridlab/vcs"
	"gridlab/vcs/badgervcs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close, dispatcher
// dispose) fires before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Journal store (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("journal store opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. History index (Bluge)
	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 4. Versioned store
	vcsRegistry := vcs.NewRegistry(logger)
	provider := badgervcs.NewProvider(logger)
	vcsRegistry.Register(provider)
	if !vcs.HasMarker(config.RepoBasePath) {
		logger.Info("No repository found, initializing", "base", config.RepoBasePath)
		if err := provider.InitializeRepository(config.RepoBasePath, "", nil); err != nil {
			return exitRuntime, fmt.Errorf("repository init failed: %w", err)
		}
	}
	repo, err := vcsRegistry.Open(config.RepoBasePath)
	if err != nil {
		return exitRuntime, fmt.Errorf("repository open failed: %w", err)
	}
	defer func() {
		logger.Info("Disposing repository handle...")
		_ = repo.Dispose()
	}()

	// 5. Engine: journal, history index, session registry, crash recovery
	domainRepository := repositories.NewDomainRepository(db, logger)
	historySearch := repositories.NewHistorySearch(blugeWriter, logger)
	domainCtx := domains.NewDomainContext(logger, domainRepository, repo, historySearch, nil, config.BufferSize)
	defer domainCtx.Dispose()

	if err := domainCtx.Restore(ctx, domainRepository); err != nil {
		return exitRuntime, fmt.Errorf("restoring interrupted sessions: %w", err)
	}

	// 6. Supervision: fan-out, heartbeat, monitoring
	monitoring := observability.NewMonitoringManager(logger)
	subscriberRegistry := runtime.NewRegistry()
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewEventFanout(logger, domainCtx.Events(), subscriberRegistry, monitoring, config.SinkTimeout).
			WithName("event-fanout"),
		workers.NewHeartbeatWorker(logger, monitoring, config.MetricInterval),
	)

	// 7. Services
	userRepository := repositories.NewUserRepository(db)
	authService := services.NewAuthService(userRepository, config.AuthTokenDuration)
	domainService := services.NewDomainService(authService, domainCtx, subscriberRegistry, historySearch)
	_ = domainService // handed to the transport layer

	// 8. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go monitoring.Listen(ctx)

	var debug *internal.DebugServer
	if config.DebugPort > 0 {
		debug = internal.NewDebugServer(logger, db, domainCtx, monitoring, config.DebugPort)
		debug.Start()
	}

	// 9. Run the engine until a signal arrives.
	logger.Info("Starting supervisor", "host", config.Host, "port", config.Port)
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	// 10. Graceful shutdown: stop workers first so no event is dropped
	// mid-delivery, then the debug server.
	sup.Stop()
	<-done
	if debug != nil {
		_ = debug.Stop(context.Background())
	}
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}
	return options
}
