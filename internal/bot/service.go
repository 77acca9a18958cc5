package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kellowedkill/dnipro/internal/models"
	"github.com/kellowedkill/dnipro/internal/store"
)

// TelegramClient - интерфейс для взаимодействия с Telegram API
type TelegramClient interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	EditMessageText(chatID int64, messageID int, text string) error
	EditMessageTextWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	SendPhoto(chatID int64, fileID, caption string) error
	ForwardMessage(chatID, fromChatID int64, messageID int) error
	AnswerCallback(callbackID, text string) error

	// Метод для получения обновлений
	StartBot() (chan models.Message, chan models.CallbackQuery, error)
}

// Service - основной сервис бота
type Service struct {
	telegram TelegramClient
	logger   *zap.Logger
	store    *store.Store
	adminID  int64
	operator string // хэндл оператора в приветствии
	channel  string // ссылка на канал в приветствии
	card     string // реквизиты карты для оплаты
}

// NewService - создает новый экземпляр основного сервиса бота
func NewService(telegram TelegramClient, logger *zap.Logger, st *store.Store, adminID int64, operator, channel, card string) *Service {
	return &Service{
		telegram: telegram,
		logger:   logger,
		store:    st,
		adminID:  adminID,
		operator: operator,
		channel:  channel,
		card:     card,
	}
}

// Start - запускает обработку сообщений и callback-запросов.
// События обрабатываются строго по одному: операции хранилища меняют
// несколько контейнеров разом, параллельной обработки здесь нет намеренно.
func (s *Service) Start() error {
	messages, callbacks, err := s.telegram.StartBot()
	if err != nil {
		s.logger.Error("ошибка при запуске бота",
			zap.Error(err),
		)
		return err
	}

	for messages != nil || callbacks != nil {
		select {
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			s.logger.Info("получено сообщение",
				zap.Int64("user_id", msg.UserID),
				zap.String("text", msg.Text),
			)
			if err := s.HandleMessage(msg); err != nil {
				s.logger.Error("ошибка при обработке сообщения",
					zap.Error(err),
					zap.Int64("user_id", msg.UserID),
				)
			}

		case cb, ok := <-callbacks:
			if !ok {
				callbacks = nil
				continue
			}
			s.logger.Info("получен callback-запрос",
				zap.String("data", cb.Data),
				zap.Int64("user_id", cb.UserID),
			)
			if err := s.HandleCallback(cb); err != nil {
				s.logger.Error("ошибка при обработке callback-запроса",
					zap.Error(err),
					zap.String("data", cb.Data),
					zap.Int64("user_id", cb.UserID),
				)
			}
		}
	}

	return nil
}
