package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kellowedkill/dnipro/internal/models"
	"github.com/kellowedkill/dnipro/internal/store"
)

// HandleMessage - основной обработчик входящих сообщений
func (s *Service) HandleMessage(msg models.Message) error {
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		return s.handleStart(msg)
	case text == "/admin":
		return s.handleAdminPanel(msg)
	case strings.HasPrefix(text, "/send"):
		return s.handleSendCommand(msg)
	}

	if s.store.IsAdmin(msg.UserID) {
		return s.handleAdminContent(msg)
	}
	return s.handleCustomerContent(msg)
}

// handleStart - начало нового заказа: приветствие и кнопка города.
func (s *Service) handleStart(msg models.Message) error {
	if err := s.store.StartSession(msg.UserID); err != nil {
		if errors.Is(err, store.ErrSessionConflict) {
			return s.telegram.SendMessage(msg.ChatID, sessionConflictText)
		}
		return err
	}

	name := msg.Username
	if name == "" {
		name = msg.FullName
	}
	return s.telegram.SendMessageWithInlineKeyboard(
		msg.ChatID,
		welcomeText(name, s.operator, s.channel),
		cityKeyboard(),
	)
}

// handleAdminPanel - /admin: очередь заказов карточками с кнопками решения.
func (s *Service) handleAdminPanel(msg models.Message) error {
	if !s.store.IsAdmin(msg.UserID) {
		return s.telegram.SendMessage(msg.ChatID, noAccessCommandText)
	}

	pending := s.store.PendingOrders()
	if len(pending) == 0 {
		return s.telegram.SendMessage(msg.ChatID, noPendingOrdersText)
	}

	for _, order := range pending {
		if err := s.telegram.SendMessageWithInlineKeyboard(msg.ChatID, adminOrderCard(order), adminOrderKeyboard(order)); err != nil {
			s.logger.Error("ошибка при отправке карточки заказа",
				zap.Error(err),
				zap.Int64("order_id", order.ID),
			)
		}
	}
	return nil
}

// handleSendCommand - /send <orderId>: взводит одноразовую пересылку
// следующего аплоуда оператора пользователю заказа.
func (s *Service) handleSendCommand(msg models.Message) error {
	if !s.store.IsAdmin(msg.UserID) {
		return s.telegram.SendMessage(msg.ChatID, noAccessText)
	}

	args := strings.Fields(msg.Text)
	if len(args) < 2 {
		return s.telegram.SendMessage(msg.ChatID, sendUsageText)
	}
	orderID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return s.telegram.SendMessage(msg.ChatID, sendUsageText)
	}

	if _, err := s.store.ArmForward(msg.UserID, orderID); err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return s.telegram.SendMessage(msg.ChatID, orderNotFoundText)
		}
		return err
	}

	return s.telegram.SendMessage(msg.ChatID, fmt.Sprintf("Жду фото для отправки пользователю заказа #%d.", orderID))
}

// handleAdminContent - свободное сообщение оператора: сначала слот ответа
// клиенту, затем одноразовый слот /send. Без взведённых слотов сообщение
// игнорируется.
func (s *Service) handleAdminContent(msg models.Message) error {
	content := msg.AsContent()
	if content.Empty() {
		return nil
	}

	target, err := s.store.DeliverReply(msg.UserID)
	switch {
	case err == nil:
		return s.deliverReply(msg, target, content)
	case errors.Is(err, store.ErrNoReplyTarget):
		return s.deliverForward(msg)
	default:
		return err
	}
}

// deliverReply доставляет ответ оператора клиенту. Слот уже очищен:
// неудачная доставка сообщается оператору, но слот не восстанавливается.
func (s *Service) deliverReply(msg models.Message, target models.ReplyTarget, content models.Content) error {
	header := fmt.Sprintf("✉️ Сообщение оператора по заказу #%d", target.OrderID)

	err := s.sendContent(target.UserID, header, content)
	if err != nil {
		s.logger.Error("ошибка доставки ответа оператора",
			zap.Error(err),
			zap.Int64("user_id", target.UserID),
			zap.Int64("order_id", target.OrderID),
		)
		return s.telegram.SendMessage(msg.ChatID, fmt.Sprintf("Не удалось доставить сообщение по заказу #%d.", target.OrderID))
	}

	return s.telegram.SendMessage(msg.ChatID, fmt.Sprintf("Сообщение отправлено пользователю заказа #%d.", target.OrderID))
}

// deliverForward - путь команды /send: аплоуд оператора пересылается как есть.
func (s *Service) deliverForward(msg models.Message) error {
	order, err := s.store.TakeForward(msg.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNoForwardTarget) {
			return nil
		}
		if errors.Is(err, store.ErrOrderNotFound) {
			return s.telegram.SendMessage(msg.ChatID, "Пользователь не найден.")
		}
		return err
	}

	if err := s.telegram.SendMessage(order.UserID, fmt.Sprintf("📦 Фото по заказу #%d", order.ID)); err != nil {
		return s.telegram.SendMessage(msg.ChatID, fmt.Sprintf("Не удалось доставить сообщение по заказу #%d.", order.ID))
	}
	if err := s.telegram.ForwardMessage(order.UserID, msg.ChatID, msg.MessageID); err != nil {
		s.logger.Error("ошибка пересылки сообщения",
			zap.Error(err),
			zap.Int64("order_id", order.ID),
		)
		return s.telegram.SendMessage(msg.ChatID, fmt.Sprintf("Не удалось доставить сообщение по заказу #%d.", order.ID))
	}

	return s.telegram.SendMessage(msg.ChatID, fmt.Sprintf("Фото успешно отправлено пользователю заказа #%d.", order.ID))
}

// handleCustomerContent - свободное сообщение клиента трактуется как
// подтверждение оплаты, если оно сейчас ожидается.
func (s *Service) handleCustomerContent(msg models.Message) error {
	content := msg.AsContent()
	if content.Empty() {
		return nil
	}

	order, err := s.store.SubmitPaymentProof(msg.UserID, content)
	if err != nil {
		if errors.Is(err, store.ErrNoPendingPayment) {
			return s.telegram.SendMessage(msg.ChatID, chooseProductFirstText)
		}
		return err
	}

	// Карточка с кнопками решения, затем само подтверждение как есть.
	if err := s.telegram.SendMessageWithInlineKeyboard(s.adminID, proofForwardText(order), adminOrderKeyboard(order)); err != nil {
		s.logger.Error("ошибка отправки скрина оплаты оператору",
			zap.Error(err),
			zap.Int64("order_id", order.ID),
		)
	}
	if err := s.telegram.ForwardMessage(s.adminID, msg.ChatID, msg.MessageID); err != nil {
		s.logger.Error("ошибка пересылки скрина оплаты",
			zap.Error(err),
			zap.Int64("order_id", order.ID),
		)
	}

	return s.telegram.SendMessage(msg.ChatID, proofReceivedText)
}

// HandleCallback - обработчик нажатий на инлайн-кнопки.
func (s *Service) HandleCallback(cb models.CallbackQuery) error {
	data := cb.Data

	switch {
	case data == "city_dnepr":
		return s.telegram.EditMessageTextWithKeyboard(cb.ChatID, cb.MessageID, productMenuText, productKeyboard())

	case strings.HasPrefix(data, "product_"):
		return s.handleProductSelected(cb)

	case strings.HasPrefix(data, "area_"):
		return s.handleAreaSelected(cb)

	case data == "pay_card":
		return s.handlePaySelected(cb)

	case strings.HasPrefix(data, "approve_"):
		return s.handleDecision(cb, "approve_")

	case strings.HasPrefix(data, "reject_"):
		return s.handleDecision(cb, "reject_")

	case strings.HasPrefix(data, "reply_"):
		return s.handleReplyRequested(cb)
	}

	s.logger.Warn("неизвестный callback", zap.String("data", data))
	return nil
}

func (s *Service) handleProductSelected(cb models.CallbackQuery) error {
	sess, err := s.store.SelectProduct(cb.UserID, cb.Data)
	if err != nil {
		if errors.Is(err, store.ErrUnknownProduct) {
			return s.telegram.EditMessageText(cb.ChatID, cb.MessageID, restartHint)
		}
		return err
	}

	return s.telegram.EditMessageTextWithKeyboard(cb.ChatID, cb.MessageID, areaMenuText(sess.Product, sess.Price), areaKeyboard())
}

func (s *Service) handleAreaSelected(cb models.CallbackQuery) error {
	order, err := s.store.SelectArea(cb.UserID, cb.Username, cb.Data)
	if err != nil {
		if errors.Is(err, store.ErrNoActiveSession) || errors.Is(err, store.ErrUnknownArea) {
			return s.telegram.EditMessageText(cb.ChatID, cb.MessageID, restartHint)
		}
		return err
	}

	if err := s.telegram.EditMessageTextWithKeyboard(cb.ChatID, cb.MessageID, orderCreatedText(order), payKeyboard()); err != nil {
		return err
	}

	// Карточка нового заказа оператору
	if err := s.telegram.SendMessageWithInlineKeyboard(s.adminID, adminOrderCard(order), adminOrderKeyboard(order)); err != nil {
		s.logger.Error("ошибка отправки карточки заказа оператору",
			zap.Error(err),
			zap.Int64("order_id", order.ID),
		)
	}
	return nil
}

func (s *Service) handlePaySelected(cb models.CallbackQuery) error {
	order, err := s.store.ChoosePaymentMethod(cb.UserID, cb.MessageID)
	if err != nil {
		if errors.Is(err, store.ErrNoActiveOrder) {
			return s.telegram.EditMessageText(cb.ChatID, cb.MessageID, chooseProductFirstText)
		}
		return err
	}

	return s.telegram.EditMessageText(cb.ChatID, cb.MessageID, paymentRequisitesText(order, s.card))
}

// handleDecision - approve_<id> / reject_<id> от оператора.
func (s *Service) handleDecision(cb models.CallbackQuery, prefix string) error {
	if !s.store.IsAdmin(cb.UserID) {
		return s.telegram.AnswerCallback(cb.ID, noAccessText)
	}

	orderID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, prefix), 10, 64)
	if err != nil {
		return s.telegram.AnswerCallback(cb.ID, orderNotFoundText)
	}

	var decision store.Decision
	if prefix == "approve_" {
		decision, err = s.store.Approve(orderID)
	} else {
		decision, err = s.store.Reject(orderID)
	}
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return s.telegram.AnswerCallback(cb.ID, orderNotFoundText)
		}
		return err
	}

	if decision.AlreadyTerminal {
		return s.telegram.AnswerCallback(cb.ID, orderProcessedText)
	}

	order := decision.Order
	var customerText, cardText string
	if order.Status == models.OrderStatusApproved {
		customerText = approvedText(order.ID)
		cardText = fmt.Sprintf("✅ Заказ #%d подтвержден.", order.ID)
	} else {
		customerText = rejectedText(order.ID)
		cardText = fmt.Sprintf("❌ Заказ #%d отклонён.", order.ID)
	}

	if err := s.telegram.SendMessage(order.UserID, customerText); err != nil {
		s.logger.Error("ошибка уведомления клиента о решении",
			zap.Error(err),
			zap.Int64("order_id", order.ID),
			zap.Int64("user_id", order.UserID),
		)
	}
	return s.telegram.EditMessageText(cb.ChatID, cb.MessageID, cardText)
}

// handleReplyRequested - reply_<userId>_<orderId>: оператор хочет написать
// клиенту по конкретному заказу.
func (s *Service) handleReplyRequested(cb models.CallbackQuery) error {
	parts := strings.Split(cb.Data, "_")
	if len(parts) != 3 {
		return s.telegram.AnswerCallback(cb.ID, orderNotFoundText)
	}
	userID, err1 := strconv.ParseInt(parts[1], 10, 64)
	orderID, err2 := strconv.ParseInt(parts[2], 10, 64)
	if err1 != nil || err2 != nil {
		return s.telegram.AnswerCallback(cb.ID, orderNotFoundText)
	}

	if err := s.store.RequestReply(cb.UserID, userID, orderID); err != nil {
		switch {
		case errors.Is(err, store.ErrUnauthorized):
			return s.telegram.AnswerCallback(cb.ID, noAccessText)
		case errors.Is(err, store.ErrOrderNotFound):
			return s.telegram.AnswerCallback(cb.ID, orderNotFoundText)
		}
		return err
	}

	return s.telegram.SendMessage(cb.ChatID, fmt.Sprintf("Жду сообщение для пользователя заказа #%d.", orderID))
}

// sendContent доставляет тегированную нагрузку: заголовок с номером заказа,
// затем текст или фото.
func (s *Service) sendContent(chatID int64, header string, content models.Content) error {
	switch content.Kind {
	case models.ContentPhoto:
		return s.telegram.SendPhoto(chatID, content.PhotoID, header)
	case models.ContentPhotoWithCaption:
		if err := s.telegram.SendMessage(chatID, header); err != nil {
			return err
		}
		return s.telegram.SendPhoto(chatID, content.PhotoID, content.Caption)
	default:
		return s.telegram.SendMessage(chatID, header+"\n"+content.Text)
	}
}
