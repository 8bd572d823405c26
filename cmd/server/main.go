// Package main starts the login stub server: it answers
// POST /validate_login.php with the dispatch wire envelope, backed by
// PostgreSQL or an in-memory account store.
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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/markadai/taxidispatch/internal/config"
	"github.com/markadai/taxidispatch/internal/db"
	"github.com/markadai/taxidispatch/internal/logger"
	"github.com/markadai/taxidispatch/internal/middleware"
	"github.com/markadai/taxidispatch/internal/models"
	"github.com/markadai/taxidispatch/internal/repository"
	"github.com/markadai/taxidispatch/internal/server/handler/http"
	"github.com/markadai/taxidispatch/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// demoPassword is shared by the seeded in-memory accounts.
const demoPassword = "taxi123"

type demoAccount struct {
	email, phone string
	user         models.User
}

var demoAccounts = []demoAccount{
	{"admin@markadai.com", "8095550100", models.User{Name: "Ana", Apellido: "Marte", TypeU: "admin", Status: "Active"}},
	{"john@markadai.com", "8095550101", models.User{Name: "John", Apellido: "Doe", TypeU: "driver", Status: "Active"}},
	{"jane@markadai.com", "8095550102", models.User{Name: "Jane", Apellido: "Smith", TypeU: "driver", Status: "Inactive"}},
}

func main() {
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
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options, zapLogger); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, options *config.ServerOptions, zapLogger *zap.Logger) error {
	authRepo, err := newRepository(ctx, options, zapLogger)
	if err != nil {
		return err
	}
	authService := service.NewAuthService(authRepo)

	if _, ok := authRepo.(*repository.MemoryAuthRepository); ok {
		if err := seedDemoAccounts(ctx, authService); err != nil {
			return err
		}
		zapLogger.Info("using in-memory accounts", zap.Int("seeded", len(demoAccounts)))
	}

	cache, err := newRedis(ctx, options.RedisURL)
	if err != nil {
		return err
	}
	var rateLimit func(nethttp.Handler) nethttp.Handler
	if cache != nil {
		defer cache.Close()
		rateLimit = middleware.LoginRateLimit(cache, options.RateLimit, zapLogger.Named("ratelimit"))
		zapLogger.Info("login rate limit enabled", zap.Int("per_minute", options.RateLimit))
	}

	authHandler := &http.AuthHandler{AuthService: authService, Logger: zapLogger}
	router := http.NewRouter(authHandler, zapLogger, rateLimit)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSEnabled() {
			server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Addr))
			errCh <- server.ListenAndServeTLS(options.CertFile, options.KeyFile)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	zapLogger.Info("server stopped")
	return nil
}

// newRepository opens PostgreSQL when a DSN is configured and starts the
// attempt cleaner; otherwise it returns an empty in-memory store.
func newRepository(ctx context.Context, options *config.ServerOptions, zapLogger *zap.Logger) (service.AuthRepository, error) {
	if options.DatabaseDSN == "" {
		return repository.NewMemoryAuthRepository(), nil
	}

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("cannot init database: %w", err)
	}
	go func() {
		<-ctx.Done()
		postgresDB.Close()
	}()

	db.StartAttemptCleaner(ctx, postgresDB,
		time.Hour, // interval
		options.AttemptRetention,
		zapLogger.Named("cleaner"),
	)
	return repository.NewPostgresAuthRepository(postgresDB), nil
}

// newRedis connects to url. An empty url disables rate limiting.
func newRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func seedDemoAccounts(ctx context.Context, svc *service.Service) error {
	for _, d := range demoAccounts {
		if _, err := svc.Register(ctx, d.email, d.phone, demoPassword, d.user); err != nil {
			return fmt.Errorf("seed %s: %w", d.email, err)
		}
	}
	return nil
}
