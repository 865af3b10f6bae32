package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bazarit/marketplace-api/internal/api"
	"github.com/bazarit/marketplace-api/internal/core/service"
	"github.com/bazarit/marketplace-api/internal/infrastructure/config"
	mongodb "github.com/bazarit/marketplace-api/internal/infrastructure/db/mongo"
	redisdb "github.com/bazarit/marketplace-api/internal/infrastructure/db/redis"
	"github.com/bazarit/marketplace-api/internal/infrastructure/queue"
	"github.com/bazarit/marketplace-api/internal/infrastructure/sms"
	"github.com/bazarit/marketplace-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(shutdownCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	challengeRepo := mongodb.NewChallengeRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)

	if err := challengeRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("otp index creation failed")
	}
	if err := roleRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("role index creation failed")
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}

	// --- Delivery ---
	dispatcher := queue.NewSMSDispatcher(cfg.SMS.Workers, sms.NewLogSender(log), log)
	dispatcher.Start(ctx)

	// --- Services ---
	otpService := service.NewOTPService(
		challengeRepo,
		redisdb.NewOTPRateLimiter(rdb),
		dispatcher,
		service.OTPConfig{
			CodeTTL:    cfg.OTP.CodeTTL,
			RateWindow: cfg.OTP.RateWindow,
			RateMax:    cfg.OTP.RateMax,
		},
		log,
	)

	authService := service.NewAuthService(
		userRepo,
		otpService,
		redisdb.NewSessionStore(rdb),
		service.AuthConfig{
			JWTSecret:        cfg.Auth.JWTSecret,
			RefreshSecret:    cfg.Auth.RefreshSecret,
			AccessTTL:        cfg.Auth.AccessTokenTTL,
			RefreshTTL:       cfg.Auth.RefreshTokenTTL,
			OTPRequiredLogin: cfg.Auth.OTPRequiredLogin,
		},
	)

	accessService := service.NewAccessService(roleRepo, log)

	e := api.NewRouter(api.Dependencies{
		OTPService:  otpService,
		AuthService: authService,
		Access:      accessService,
		Roles:       roleRepo,
		Mongo:       db,
		Redis:       rdb,
		Production:  cfg.Env == "production",
		Logger:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
