package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"growth/internal/cache"
	"growth/internal/cli"
	apphttp "growth/internal/http"
	applog "growth/internal/log"
	"growth/internal/theme"
)

func main() {
	os.Exit(run())
}

// run starts the server and blocks until it stops. Deferred cleanup runs
// before main exits with the returned code.
func run() int {
	cli.LoadEnvFile()

	// Bootstrap logger until the configured level is known.
	logger := cli.SetupLogger(os.Stdout, "info")
	cfg := cli.LoadAndValidateConfig(logger.Logger)
	logger = cli.SetupLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := cli.ShutdownContext(context.Background(), logger.Logger)
	defer stop()

	res, err := cli.InitBackend(ctx, logger.WithComponent(applog.ComponentBackend).Logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize preference store", applog.FieldError, err, "backend", cfg.PrefsBackend,
			applog.FieldErrorType, applog.ErrorTypeDatabase, applog.FieldOperation, applog.OpStartup)
		return 1
	}
	defer func() {
		if res.Cleanup == nil {
			return
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Preference store cleanup failed", applog.FieldError, err, applog.FieldOperation, applog.OpShutdown)
		}
	}()

	themeCache := cache.NewLRUCache[theme.Theme](cfg.PrefsCacheSize, cfg.PrefsCacheTTL)
	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	caches.Register(themeCache)
	caches.StartCleanup(cfg.PrefsCacheTTL)

	themes := theme.NewService(res.Backend, themeCache, logger.WithComponent(applog.ComponentTheme).Logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Themes:             themes,
		Store:              res.Backend,
		Caches:             caches,
		Logger:             logger,
		ChartWidth:         cfg.ChartWidth,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting growth server", "port", cfg.Port, "backend", cfg.PrefsBackend,
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		return 1
	}
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
	return 0
}
