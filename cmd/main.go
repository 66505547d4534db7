package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"groundtruth-bot/config"
	telegram "groundtruth-bot/internal/api"
	"groundtruth-bot/internal/container"
	"groundtruth-bot/internal/infrastructure/storage"
	"groundtruth-bot/internal/infrastructure/vision"
	"groundtruth-bot/internal/logger"
)

func main() {
	log := logger.NewConsoleLogger(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	cfg, err := config.Load()
	if err != nil {
		log.Error("main", err, map[string]interface{}{"stage": "config"})
		os.Exit(1)
	}
	log = logger.NewConsoleLogger(logger.ParseLevel(cfg.LogLevel))

	if cfg.TelegramToken == "" {
		log.Error("main", errors.New("TELEGRAM_TOKEN is required"), nil)
		os.Exit(1)
	}
	// Ошибки геометрии ловим до запуска бота, а не на первом снимке
	if err := cfg.Validate(); err != nil {
		log.Error("main", err, map[string]interface{}{"stage": "config"})
		os.Exit(1)
	}

	preprocessor, err := vision.NewPreprocessor(cfg.Backend)
	if err != nil {
		log.Error("main", err, map[string]interface{}{"stage": "preprocessor"})
		os.Exit(1)
	}

	// Одно хранилище для пользователей и последних разметок
	repo := storage.NewMemoryRepository()

	// Собираем сервисы приложения
	appContainer := container.New(cfg, repo, repo, preprocessor, log)

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
	if err != nil {
		log.Error("main", err, map[string]interface{}{"stage": "bot"})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("main", "bot is running", map[string]interface{}{"backend": cfg.Backend})
	if err := bot.Run(ctx); err != nil {
		log.Error("main", err, nil)
		os.Exit(1)
	}
}
