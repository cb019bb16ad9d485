package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"translation-api/internal/config"
	"translation-api/internal/db"
	"translation-api/internal/email"
	apihttp "translation-api/internal/http"
	"translation-api/internal/repository"
	"translation-api/internal/service"
	"translation-api/internal/translate"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var (
		userRepo        repository.UserRepository
		translationRepo repository.TranslationRepository
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		userRepo = repository.NewMemoryUserRepository()
		translationRepo = repository.NewMemoryTranslationRepository()
	default:
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
				logger.Fatal("db migrate", zap.Error(err))
			}
		}
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		userRepo = repository.NewPgUserRepository(pool)
		translationRepo = repository.NewPgTranslationRepository(pool)
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS, cfg.ResetURL)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var translator translate.Translator = translate.MockTranslator{Delay: cfg.MockDelay}
	if cfg.TranslatorURL != "" {
		translator = translate.NewHTTPTranslator(cfg.TranslatorURL, logger)
	} else {
		logger.Info("translator url not configured, using mock translator")
	}

	userSvc := service.NewUserService(logger, userRepo, cfg.Auth)
	jwtSvc := service.NewJWTService(cfg.Auth)
	resetSvc := service.NewPasswordResetService(logger, userRepo, emailSender, cfg.Auth)
	historySvc := service.NewHistoryService(logger, translationRepo)

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc, resetSvc)
	historyHandler := apihttp.NewHistoryHandler(logger, historySvc)
	translateHandler := apihttp.NewTranslateHandler(logger, translator)
	authMW := apihttp.JWTAuthMiddleware(jwtSvc, userSvc, logger)
	router := apihttp.NewRouter(logger, userHandler, historyHandler, translateHandler, authMW)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           apihttp.WithCORS(router, cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
