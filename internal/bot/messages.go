package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kellowedkill/dnipro/internal/catalog"
	"github.com/kellowedkill/dnipro/internal/models"
)

const (
	productMenuText = "Вы выбрали город Днепр.\nЧто тебе присмотрелось?"

	restartHint = "Что-то пошло не так. Попробуй снова /start"

	sessionConflictText = "У тебя уже есть незавершённый заказ. Дождись решения оператора."

	proofReceivedText = "Скрин получен! Ожидай подтверждение от оператора."

	chooseProductFirstText = "Сначала выбери товар /start"

	noAccessText = "Нет доступа."

	noAccessCommandText = "У тебя нет доступа к этой команде."

	noPendingOrdersText = "Нет новых заказов."

	orderProcessedText = "Заказ уже обработан."

	orderNotFoundText = "Заказ с таким номером не найден."

	sendUsageText = "Укажи номер заказа. Пример: /send 70214"
)

func welcomeText(name, operator, channel string) string {
	return fmt.Sprintf(
		"Ку бро, - %s\n\n"+
			"Рад тебя видеть в нашем шопе.\n"+
			"Оператор: %s\n"+
			"Не забудь подписаться на канал - %s",
		name, operator, channel,
	)
}

func areaMenuText(product, price string) string {
	return fmt.Sprintf(
		"Избран продукт: %s\n"+
			"Цена: %s\n"+
			"Выберите подходящий район:",
		product, price,
	)
}

func orderCreatedText(order models.Order) string {
	return fmt.Sprintf(
		"Заказ создан! Адрес забронирован!\n\n"+
			"Ваш заказ №: %d\n"+
			"Город: %s\n"+
			"Товар: %s\n"+
			"Цена: %s\n"+
			"Метод оплаты:",
		order.ID, order.City, order.Product, order.Price,
	)
}

func paymentRequisitesText(order models.Order, card string) string {
	return fmt.Sprintf(
		"Ваш заказ №: %d\n"+
			"Город: %s\n"+
			"Товар: %s\n"+
			"Цена: %s\n\n"+
			"Выбран метод оплаты на банковскую карту.\n"+
			"Для получения товара, оплатите на карту: %s\n"+
			"Сумма: %s\n\n"+
			"После оплаты скинь скрин сюда.",
		order.ID, order.City, order.Product, order.Price, card, order.Price,
	)
}

// adminOrderCard - карточка заказа для оператора.
func adminOrderCard(order models.Order) string {
	return fmt.Sprintf(
		"📦 Новый заказ #%d\n"+
			"Юзер: @%s\n"+
			"Товар: %s\n"+
			"Цена: %s\n"+
			"Район: %s\n"+
			"Статус: %s",
		order.ID, order.Username, order.Product, order.Price, order.Area, order.Status,
	)
}

func proofForwardText(order models.Order) string {
	return fmt.Sprintf("📄 Скрин оплаты от @%s для заказа #%d", order.Username, order.ID)
}

func approvedText(orderID int64) string {
	return fmt.Sprintf("✅ Заказ #%d подтвержден! Скоро с тобой свяжется оператор.", orderID)
}

func rejectedText(orderID int64) string {
	return fmt.Sprintf("❌ Заказ #%d был отклонён. Свяжись с оператором.", orderID)
}

func cityKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Днепр", "city_dnepr"),
		),
	)
}

func productKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(catalog.Products()))
	for _, p := range catalog.Products() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Label, p.Key),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func areaKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(catalog.Areas()))
	for _, a := range catalog.Areas() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(a.Name, a.Key),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func payKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Оплата на карту", "pay_card"),
		),
	)
}

// adminOrderKeyboard - кнопки решения по заказу плюс кнопка свободного ответа
// клиенту.
func adminOrderKeyboard(order models.Order) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("approve_%d", order.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("reject_%d", order.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✉️ Ответить", fmt.Sprintf("reply_%d_%d", order.UserID, order.ID)),
		),
	)
}
