package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	grpchealth "google.golang.org/grpc/health"

	"github.com/dtroode/taskboard-server/internal/api/grpc/health"
	grpcRouter "github.com/dtroode/taskboard-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/taskboard-server/internal/api/grpc/server"
	httpctx "github.com/dtroode/taskboard-server/internal/api/http/context"
	httpRouter "github.com/dtroode/taskboard-server/internal/api/http/router"
	httpServer "github.com/dtroode/taskboard-server/internal/api/http/server"
	"github.com/dtroode/taskboard-server/internal/config"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/metrics"
	"github.com/dtroode/taskboard-server/internal/model"
	"github.com/dtroode/taskboard-server/internal/password"
	"github.com/dtroode/taskboard-server/internal/repository/postgres"
	"github.com/dtroode/taskboard-server/internal/repository/redis"
	"github.com/dtroode/taskboard-server/internal/server"
	"github.com/dtroode/taskboard-server/internal/service"
	"github.com/dtroode/taskboard-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	m := metrics.New()
	healthServer := grpchealth.NewServer()
	checker := health.NewChecker(healthServer, cfg.GRPC.HealthInterval, logger)
	checker.Add("postgres", db)

	refreshStore, closeRefreshStore := newRefreshTokenStore(ctx, cfg, db, checker, logger)
	defer closeRefreshStore()

	userRepo := postgres.NewUserRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	tokenManager := token.NewJWT(cfg.JWT)
	hasher := password.NewBcrypt(cfg.Password.BcryptCost)

	tokenService := service.NewTokenService(tokenManager, refreshStore, logger, cfg.JWT.RefreshTTL)
	authService := service.NewAuth(userRepo, hasher, tokenService, logger)
	taskService := service.NewTask(taskRepo, logger)

	router := httpRouter.New(
		httpRouter.Services{
			Auth:    authService,
			Session: tokenService,
			Tokens:  tokenService,
			Tasks:   taskService,
		},
		httpctx.NewManager(),
		m,
		httpRouter.Options{
			RequestTimeout: cfg.HTTP.RequestTimeout,
			CORSOrigin:     cfg.HTTP.CORSOrigin,
		},
		logger,
	)

	servers := []model.Server{
		httpServer.NewHTTPServer(router.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port)),
	}
	if cfg.GRPC.Enabled {
		s := grpcRouter.New(healthServer, m, logger).Register()
		servers = append(servers, grpcServer.NewGRPCServer(s, fmt.Sprintf(":%s", cfg.GRPC.Port)))
	}

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup

	if cfg.GRPC.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checker.Run(ctx)
		}()
	}

	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// newRefreshTokenStore picks the configured refresh token backend and
// registers it with the health checker when it is a separate service.
func newRefreshTokenStore(
	ctx context.Context,
	cfg *config.Config,
	db *postgres.Connection,
	checker *health.Checker,
	logger *logger.Logger,
) (model.RefreshTokenStore, func()) {
	if cfg.RefreshStore.Backend != config.RefreshStoreRedis {
		return postgres.NewRefreshTokenRepository(db), func() {}
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := redis.NewRefreshTokenStore(client, cfg.Redis.KeyPrefix)
	if err := store.Ping(ctx); err != nil {
		logger.Fatal("failed to connect to redis", "error", err, "addr", cfg.Redis.Addr)
	}
	checker.Add("redis", store)

	return store, func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
