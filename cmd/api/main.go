package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lifesync-engine/internal/config"
	"lifesync-engine/internal/db"
	"lifesync-engine/internal/email"
	apihttp "lifesync-engine/internal/http"
	"lifesync-engine/internal/llm"
	"lifesync-engine/internal/metrics"
	"lifesync-engine/internal/persona"
	"lifesync-engine/internal/questionbank"
	"lifesync-engine/internal/quota"
	"lifesync-engine/internal/ratelimit"
	"lifesync-engine/internal/repository"
	"lifesync-engine/internal/scorer"
	"lifesync-engine/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := db.DefaultManager().Initialize(ctx, cfg); err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.DefaultManager().Close()

	pool, err := db.DefaultManager().Pool()
	if err != nil {
		logger.Fatal("db pool", zap.Error(err))
	}

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}

	bank, err := questionbank.Load()
	if err != nil {
		logger.Fatal("question bank", zap.Error(err))
	}
	personas, err := persona.Load()
	if err != nil {
		logger.Fatal("persona registry", zap.Error(err))
	}

	repository.ConfigureTimeouts(cfg.DBQueryTimeout, cfg.DBAuthTimeout)
	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	assessRepo := repository.NewPgAssessmentRepository(pool, logger)
	explRepo := repository.NewPgExplanationRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		tokenStore = service.NewMemoryRefreshTokenStore()
		limiter    ratelimit.Limiter
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory fallbacks", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			limiter = ratelimit.NewRedisLimiter(redisClient)
		}
		cancel()
	}
	if limiter == nil {
		memLimiter := ratelimit.NewMemoryLimiter()
		defer memLimiter.Close()
		limiter = memLimiter
	}

	var providers []llm.Provider
	if cfg.GeminiAPIKey != "" {
		providers = append(providers, llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModels, logger))
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}
	if cfg.AnthropicAPIKey != "" {
		providers = append(providers, llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel))
	}
	llmRouter := llm.NewRouter(logger, providers...)

	jwtSvc := service.NewJWTServiceWithStore(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTTL, tokenStore)
	authSvc := service.NewAuthService(logger, userRepo, profileRepo, jwtSvc, emailSender)
	assessSvc := service.NewAssessmentService(logger, bank, scorer.New(bank), personas, assessRepo, profileRepo)
	explSvc := service.NewExplanationService(logger, assessRepo, explRepo, personas, llmRouter,
		quota.NewTracker(cfg.QuotaPerDay, cfg.QuotaPerHour))

	collector := metrics.NewCollector()
	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:      logger,
		Config:      cfg,
		Pool:        pool,
		Metrics:     collector,
		Limiter:     limiter,
		JWT:         jwtSvc,
		Auth:        apihttp.NewAuthHandler(logger, authSvc),
		Assessments: apihttp.NewAssessmentHandler(logger, assessSvc, explSvc),
		CacheStats: func() map[string]any {
			out := map[string]any{"breakers": llmRouter.BreakerStates()}
			for name, s := range assessRepo.CacheStats() {
				out[name] = s
			}
			out["explanation"] = explRepo.CacheStats()
			return out
		},
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("port", cfg.HTTPPort),
			zap.String("environment", cfg.Environment),
			zap.Int("providers", len(providers)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
