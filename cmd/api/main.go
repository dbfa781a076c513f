package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"healthmate/internal/config"
	"healthmate/internal/db"
	apihttp "healthmate/internal/http"
	"healthmate/internal/llm"
	"healthmate/internal/observability"
	"healthmate/internal/repository"
	"healthmate/internal/service"
)

const serviceName = "healthmate-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	tracing := ""
	if cfg.OTelEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, serviceName, cfg.OTelEndpoint)
		if err != nil {
			logger.Warn("tracer init failed", zap.Error(err))
		} else {
			tracing = serviceName
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(sctx)
			}()
		}
	}

	checks := map[string]apihttp.ReadinessCheck{}
	var (
		userRepo repository.UserRepository
		chatRepo repository.ChatRepository
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool); err != nil {
				logger.Fatal("db migrate", zap.Error(err))
			}
		}
		userRepo = repository.NewPgUserRepository(pool, prom)
		chatRepo = repository.NewPgChatRepository(pool, prom)
		checks["postgres"] = func(ctx context.Context) error { return db.Ping(ctx, pool) }
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		userRepo = repository.NewMemoryUserRepository()
		chatRepo = repository.NewMemoryChatRepository()
	}

	limiter := service.NewMemoryLoginRateLimiter(cfg.LoginRateWindow, cfg.LoginRateMax)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory login limiter", zap.Error(err))
		} else {
			limiter = service.NewRedisLoginRateLimiter(redisClient, cfg.LoginRateWindow, cfg.LoginRateMax)
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
		cancel()
	}

	if cfg.LLMAPIKey == "" {
		logger.Warn("LLM_API_KEY not set, analysis requests will fail upstream")
	}
	llmClient := llm.NewGeminiClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout, logger)

	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	userSvc := service.NewUserService(logger, userRepo, limiter)
	chatSvc := service.NewChatService(chatRepo)
	analysisSvc := service.NewAnalysisService(llmClient, logger).WithMetrics(prom)

	router := apihttp.NewRouter(
		logger,
		jwtSvc,
		apihttp.NewUserHandler(logger, userSvc, jwtSvc),
		apihttp.NewChatHandler(logger, chatSvc),
		apihttp.NewAnalysisHandler(logger, analysisSvc),
		apihttp.NewHealthHandler(logger, checks),
		apihttp.RouterOptions{
			CORSOrigins:     cfg.CORSOrigins,
			ChatRequireAuth: cfg.ChatRequireAuth,
			MaxBodyBytes:    cfg.MaxUploadBytes,
			Prom:            prom,
			Gatherer:        reg,
			TracingService:  tracing,
		},
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.Bool("chat_require_auth", cfg.ChatRequireAuth))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
