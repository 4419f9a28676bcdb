package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"bloodlink-data/internal/config"
	httpapi "bloodlink-data/internal/http"
	"bloodlink-data/internal/repository"
	"bloodlink-data/internal/service"
	"bloodlink-data/internal/store"
	"bloodlink-data/pkg/database"
	"bloodlink-data/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "bloodlink-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Session store: Redis when configured, in-process otherwise.
	var kv store.KV
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		kv = store.NewRedisKV(redisClient)
		log.Info("Redis session store enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		kv = store.NewMemoryKV()
		log.Info("Using in-memory session store")
	}

	// Repositories: Postgres when available, in-memory fallback for dev so
	// the service still starts without a database.
	var (
		usersRepo     repository.UsersRepository
		donorsRepo    repository.DonorsRepository
		requestsRepo  repository.RequestsRepository
		responsesRepo repository.ResponsesRepository
		statsRepo     repository.StatsRepository
	)
	var dbCloser func()
	if cfg.DBEnabled {
		if db, err := database.NewPostgresDB(&cfg.Database); err == nil {
			usersRepo = repository.NewPostgresUsersRepository(db)
			donorsRepo = repository.NewPostgresDonorsRepository(db)
			requestsRepo = repository.NewPostgresRequestsRepository(db)
			responsesRepo = repository.NewPostgresResponsesRepository(db)
			statsRepo = repository.NewPostgresStatsRepository(db)
			dbCloser = func() { _ = db.Close() }
			log.Info("DB enabled for bloodlink-data")
		} else {
			log.Warn("DB enabled but connection failed, falling back to in-memory store", zap.Error(err))
		}
	}
	if usersRepo == nil {
		mem := repository.NewMemoryStore()
		usersRepo = mem
		donorsRepo = mem
		requestsRepo = mem
		responsesRepo = mem
		statsRepo = mem
	}

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.Webhook.Enabled && cfg.Webhook.URL != "" {
		notifier = service.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout, log)
		log.Info("Critical request webhook enabled")
	}

	authSvc := service.NewAuthService(usersRepo, donorsRepo, kv, cfg.SessionTTL, log)
	donorSvc := service.NewDonorService(donorsRepo, log)
	requestSvc := service.NewRequestService(requestsRepo, notifier, log)
	responseSvc := service.NewResponseService(responsesRepo, requestsRepo, donorsRepo, log)
	adminSvc := service.NewAdminService(usersRepo, statsRepo, log)

	mw := httpapi.NewAuthMiddleware(authSvc, log)
	router := httpapi.NewRouter(log)
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authSvc, log), mw)
	router.RegisterDonorRoutes(httpapi.NewDonorHandler(donorSvc, log), mw)
	router.RegisterRequestRoutes(httpapi.NewRequestHandler(requestSvc, log), mw)
	router.RegisterResponseRoutes(httpapi.NewResponseHandler(responseSvc, log), mw)
	router.RegisterAdminRoutes(httpapi.NewAdminHandler(adminSvc, log), mw)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if dbCloser != nil {
		dbCloser()
	}
}
