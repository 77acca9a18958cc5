package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kellowedkill/dnipro/internal/models"
)

type Client struct {
	bot *tgbotapi.BotAPI
}

func NewClient(token string) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram client: %w", err)
	}

	return &Client{
		bot: bot,
	}, nil
}

func (t *Client) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := t.bot.Send(msg)
	return err
}

func (t *Client) SendMessageWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := t.bot.Send(msg)
	return err
}

func (t *Client) EditMessageText(chatID int64, messageID int, text string) error {
	editMsg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	_, err := t.bot.Send(editMsg)
	return err
}

func (t *Client) EditMessageTextWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	editMsg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	editMsg.ReplyMarkup = &keyboard
	_, err := t.bot.Send(editMsg)
	return err
}

func (t *Client) SendPhoto(chatID int64, fileID, caption string) error {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	_, err := t.bot.Send(msg)
	return err
}

func (t *Client) ForwardMessage(chatID, fromChatID int64, messageID int) error {
	msg := tgbotapi.NewForward(chatID, fromChatID, messageID)
	_, err := t.bot.Send(msg)
	return err
}

// AnswerCallback отвечает на callback, чтобы убрать индикатор загрузки у кнопки.
func (t *Client) AnswerCallback(callbackID, text string) error {
	callbackCfg := tgbotapi.NewCallback(callbackID, text)
	_, err := t.bot.Request(callbackCfg)
	return err
}

// StartBot запускает Long Polling и раздаёт обновления по двум каналам:
// обычные сообщения и нажатия на инлайн-кнопки.
func (t *Client) StartBot() (chan models.Message, chan models.CallbackQuery, error) {
	// Удаляем вебхук перед запуском Long Polling
	_, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to delete webhook: %v", err)
	}

	// Пауза для стабилизации соединения
	time.Sleep(1 * time.Second)

	messages := make(chan models.Message)
	callbacks := make(chan models.CallbackQuery)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)

	go func() {
		defer close(messages)
		defer close(callbacks)

		for update := range updates {
			if update.Message != nil {
				fullName := update.Message.From.FirstName
				if update.Message.From.LastName != "" {
					fullName += " " + update.Message.From.LastName
				}

				text := update.Message.Text
				photoID := largestPhotoID(update.Message)
				if photoID != "" {
					// У фото текст лежит в подписи
					text = update.Message.Caption
				}

				messages <- models.Message{
					ChatID:    update.Message.Chat.ID,
					UserID:    update.Message.From.ID,
					Username:  update.Message.From.UserName,
					FullName:  fullName,
					MessageID: update.Message.MessageID,
					Text:      text,
					PhotoID:   photoID,
				}
			}

			if update.CallbackQuery != nil {
				callbacks <- models.CallbackQuery{
					ID:        update.CallbackQuery.ID,
					UserID:    update.CallbackQuery.From.ID,
					Username:  update.CallbackQuery.From.UserName,
					ChatID:    update.CallbackQuery.Message.Chat.ID,
					MessageID: update.CallbackQuery.Message.MessageID,
					Data:      update.CallbackQuery.Data,
				}

				// Отправляем ответ на callback, чтобы убрать индикатор загрузки у кнопки
				callbackCfg := tgbotapi.NewCallback(update.CallbackQuery.ID, "")
				t.bot.Request(callbackCfg)
			}
		}
	}()

	return messages, callbacks, nil
}

// largestPhotoID возвращает file_id самого крупного варианта фото.
func largestPhotoID(msg *tgbotapi.Message) string {
	if len(msg.Photo) == 0 {
		return ""
	}
	best := msg.Photo[0]
	for _, p := range msg.Photo[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best.FileID
}
