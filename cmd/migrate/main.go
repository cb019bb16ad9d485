package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"translation-api/internal/db"
)

// Solo necesita la base; no exige JWT_SECRET como la API.
type migrateConfig struct {
	DatabaseURL string        `env:"DATABASE_URL"`
	Timeout     time.Duration `env:"MIGRATE_TIMEOUT" envDefault:"1m"`
}

// Uso: migrate [up|down|status|version|redo|reset] [args...]
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var cfg migrateConfig
	if err := env.Parse(&cfg); err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("load config", zap.Error(errors.New("DATABASE_URL is required")))
	}

	command := "up"
	var args []string
	if len(os.Args) > 1 {
		command = os.Args[1]
		args = os.Args[2:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := db.RunMigrations(ctx, cfg.DatabaseURL, command, args...); err != nil {
		logger.Fatal("migrate", zap.String("command", command), zap.Error(err))
	}
	logger.Info("migrate done", zap.String("command", command))
}
