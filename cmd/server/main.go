package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"homeledger/internal/api"
	"homeledger/internal/auth"
	"homeledger/internal/config"
	"homeledger/internal/ledger"
	"homeledger/internal/metrics"
	"homeledger/internal/middleware"
	"homeledger/internal/service"
	"homeledger/internal/storage/sqlite"
	"homeledger/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.SQLiteDBPath)

	engine := ledger.New(ledger.Config{Epsilon: cfg.Epsilon})
	svc := service.NewHouseholdService(store, engine)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authn := auth.NewPasswordAuthenticator(store)

	mux := http.NewServeMux()
	api.New(svc, authn, jwtManager).Routes(mux, middleware.RequireAuth(jwtManager))
	mux.Handle("GET /metrics", metrics.Handler())

	handler := middleware.Logging(middleware.CORS(mux))

	// h2c keeps HTTP/2 available without TLS, matching deployments that
	// terminate TLS at a proxy.
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
