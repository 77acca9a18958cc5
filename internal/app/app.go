package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kellowedkill/dnipro/internal/api"
	"github.com/kellowedkill/dnipro/internal/bot"
	"github.com/kellowedkill/dnipro/internal/config"
	"github.com/kellowedkill/dnipro/internal/database"
	"github.com/kellowedkill/dnipro/internal/logger"
	"github.com/kellowedkill/dnipro/internal/store"
	"github.com/kellowedkill/dnipro/internal/telegram"
)

func Run(configPath string) error {
	// Загружаем конфигурацию
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("не задан токен бота (telegram.token или BOT_TOKEN)")
	}
	if cfg.Telegram.AdminID == 0 {
		return fmt.Errorf("не задан ID оператора (telegram.admin_id или ADMIN_ID)")
	}

	// Инициализируем логгер
	logger, err := logger.New(cfg.Logger)
	if err != nil {
		zap.L().Error("не удалось создать логгер", zap.Error(err))
		return err
	}

	// Подключаемся к базе данных
	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Error("не удалось подключиться к базе данных", zap.Error(err))
		return err
	}

	// Репозиторий снимков состояния и менеджер заказов
	snapshots := database.NewSnapshotRepository(db, logger)
	orderStore, err := store.New(cfg.Telegram.AdminID, snapshots, logger)
	if err != nil {
		logger.Error("не удалось загрузить состояние", zap.Error(err))
		return err
	}

	// Инициализируем Telegram клиент
	tgClient, err := telegram.NewClient(cfg.Telegram.Token)
	if err != nil {
		logger.Error("не удалось создать telegram клиент", zap.Error(err))
		return err
	}

	// Эндпоинт живости для health-check хостинга
	healthServer := api.NewHealthServer(logger, cfg.API.HealthAddr)
	healthServer.Start()

	// Инициализируем основной сервис бота
	botService := bot.NewService(
		tgClient,
		logger,
		orderStore,
		cfg.Telegram.AdminID,
		cfg.Telegram.Operator,
		cfg.Telegram.Channel,
		cfg.Payment.Card,
	)

	// Запускаем бота
	if err := botService.Start(); err != nil {
		logger.Error("ошибка запуска бота", zap.Error(err))
		return err
	}

	return nil
}
