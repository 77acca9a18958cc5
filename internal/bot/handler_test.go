package bot

import (
	"strconv"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kellowedkill/dnipro/internal/models"
	"github.com/kellowedkill/dnipro/internal/store"
)

const testAdminID int64 = 777

type nopSnapshotter struct{}

func (nopSnapshotter) Save(store.State) error { return nil }

func (nopSnapshotter) Load() (store.State, bool, error) { return store.State{}, false, nil }

type sentMessage struct {
	chatID   int64
	text     string
	keyboard *tgbotapi.InlineKeyboardMarkup
}

type forwardedMessage struct {
	chatID     int64
	fromChatID int64
	messageID  int
}

// fakeTelegram записывает все исходящие вызовы.
type fakeTelegram struct {
	messages  []sentMessage
	edits     []sentMessage
	photos    []sentMessage
	forwards  []forwardedMessage
	callbacks []string
}

func (f *fakeTelegram) SendMessage(chatID int64, text string) error {
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeTelegram) SendMessageWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, keyboard: &keyboard})
	return nil
}

func (f *fakeTelegram) EditMessageText(chatID int64, messageID int, text string) error {
	f.edits = append(f.edits, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeTelegram) EditMessageTextWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	f.edits = append(f.edits, sentMessage{chatID: chatID, text: text, keyboard: &keyboard})
	return nil
}

func (f *fakeTelegram) SendPhoto(chatID int64, fileID, caption string) error {
	f.photos = append(f.photos, sentMessage{chatID: chatID, text: caption})
	return nil
}

func (f *fakeTelegram) ForwardMessage(chatID, fromChatID int64, messageID int) error {
	f.forwards = append(f.forwards, forwardedMessage{chatID: chatID, fromChatID: fromChatID, messageID: messageID})
	return nil
}

func (f *fakeTelegram) AnswerCallback(callbackID, text string) error {
	f.callbacks = append(f.callbacks, text)
	return nil
}

func (f *fakeTelegram) StartBot() (chan models.Message, chan models.CallbackQuery, error) {
	panic("not used in tests")
}

// lastMessageTo возвращает последнее сообщение, отправленное в чат.
func (f *fakeTelegram) lastMessageTo(chatID int64) (sentMessage, bool) {
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].chatID == chatID {
			return f.messages[i], true
		}
	}
	return sentMessage{}, false
}

func newTestService(t *testing.T) (*Service, *fakeTelegram) {
	t.Helper()
	st, err := store.New(testAdminID, nopSnapshotter{}, zap.NewNop())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	tg := &fakeTelegram{}
	svc := NewService(tg, zap.NewNop(), st, testAdminID, "@operator", "https://t.me/channel", "0000 0000 0000 0000")
	return svc, tg
}

func customerMessage(userID int64, text string) models.Message {
	return models.Message{
		ChatID:    userID,
		UserID:    userID,
		Username:  "buyer",
		FullName:  "Buyer",
		MessageID: 1,
		Text:      text,
	}
}

func callback(userID int64, data string) models.CallbackQuery {
	return models.CallbackQuery{
		ID:        "cb",
		UserID:    userID,
		Username:  "buyer",
		ChatID:    userID,
		MessageID: 10,
		Data:      data,
	}
}

// runOrderFlow доводит пользователя до созданного заказа и возвращает его номер.
func runOrderFlow(t *testing.T, svc *Service, tg *fakeTelegram, userID int64) int64 {
	t.Helper()
	if err := svc.HandleMessage(customerMessage(userID, "/start")); err != nil {
		t.Fatalf("/start: %v", err)
	}
	if err := svc.HandleCallback(callback(userID, "city_dnepr")); err != nil {
		t.Fatalf("city_dnepr: %v", err)
	}
	if err := svc.HandleCallback(callback(userID, "product_2")); err != nil {
		t.Fatalf("product_2: %v", err)
	}
	if err := svc.HandleCallback(callback(userID, "area_kirova")); err != nil {
		t.Fatalf("area_kirova: %v", err)
	}

	card, ok := tg.lastMessageTo(testAdminID)
	if !ok {
		t.Fatal("admin did not receive order card")
	}
	pending := svc.store.PendingOrders()
	if len(pending) == 0 {
		t.Fatal("no pending order after flow")
	}
	order := pending[len(pending)-1]
	if !strings.Contains(card.text, "Новый заказ") {
		t.Errorf("admin card text unexpected: %q", card.text)
	}
	return order.ID
}

func TestStartSendsWelcomeWithCityButton(t *testing.T) {
	svc, tg := newTestService(t)

	if err := svc.HandleMessage(customerMessage(101, "/start")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	msg, ok := tg.lastMessageTo(101)
	if !ok {
		t.Fatal("no welcome message sent")
	}
	if !strings.Contains(msg.text, "Ку бро") || !strings.Contains(msg.text, "@operator") {
		t.Errorf("unexpected welcome text: %q", msg.text)
	}
	if msg.keyboard == nil || len(msg.keyboard.InlineKeyboard) == 0 {
		t.Fatal("welcome message has no city keyboard")
	}
	if got := msg.keyboard.InlineKeyboard[0][0].Text; got != "Днепр" {
		t.Errorf("expected city button, got %q", got)
	}
}

func TestOrderFlowNotifiesAdminAndCustomer(t *testing.T) {
	svc, tg := newTestService(t)

	runOrderFlow(t, svc, tg, 101)

	card, _ := tg.lastMessageTo(testAdminID)
	if !strings.Contains(card.text, "Кирова") || !strings.Contains(card.text, "570 грн") {
		t.Errorf("admin card missing order details: %q", card.text)
	}
	if card.keyboard == nil {
		t.Fatal("admin card has no decision keyboard")
	}

	lastEdit := tg.edits[len(tg.edits)-1]
	if !strings.Contains(lastEdit.text, "Заказ создан") {
		t.Errorf("customer confirmation unexpected: %q", lastEdit.text)
	}
	if lastEdit.keyboard == nil {
		t.Error("customer confirmation has no payment keyboard")
	}
}

func TestStartWithOutstandingOrderRejected(t *testing.T) {
	svc, tg := newTestService(t)
	runOrderFlow(t, svc, tg, 101)

	if err := svc.HandleMessage(customerMessage(101, "/start")); err != nil {
		t.Fatalf("second /start: %v", err)
	}
	msg, _ := tg.lastMessageTo(101)
	if msg.text != sessionConflictText {
		t.Errorf("expected conflict message, got %q", msg.text)
	}
}

func TestPayCardShowsRequisites(t *testing.T) {
	svc, tg := newTestService(t)
	runOrderFlow(t, svc, tg, 101)

	if err := svc.HandleCallback(callback(101, "pay_card")); err != nil {
		t.Fatalf("pay_card: %v", err)
	}
	lastEdit := tg.edits[len(tg.edits)-1]
	if !strings.Contains(lastEdit.text, "0000 0000 0000 0000") {
		t.Errorf("requisites missing from payment text: %q", lastEdit.text)
	}
	if !strings.Contains(lastEdit.text, "570 грн") {
		t.Errorf("price missing from payment text: %q", lastEdit.text)
	}
}

func TestCustomerProofForwardedToAdmin(t *testing.T) {
	svc, tg := newTestService(t)
	runOrderFlow(t, svc, tg, 101)
	if err := svc.HandleCallback(callback(101, "pay_card")); err != nil {
		t.Fatalf("pay_card: %v", err)
	}

	proof := customerMessage(101, "")
	proof.PhotoID = "photo-file-id"
	proof.MessageID = 55
	if err := svc.HandleMessage(proof); err != nil {
		t.Fatalf("proof message: %v", err)
	}

	card, _ := tg.lastMessageTo(testAdminID)
	if !strings.Contains(card.text, "Скрин оплаты") {
		t.Errorf("admin proof card unexpected: %q", card.text)
	}
	if len(tg.forwards) == 0 {
		t.Fatal("proof not forwarded to admin")
	}
	fwd := tg.forwards[len(tg.forwards)-1]
	if fwd.chatID != testAdminID || fwd.messageID != 55 {
		t.Errorf("unexpected forward: %+v", fwd)
	}

	reply, _ := tg.lastMessageTo(101)
	if reply.text != proofReceivedText {
		t.Errorf("customer ack unexpected: %q", reply.text)
	}
}

func TestCustomerContentWithoutPendingPayment(t *testing.T) {
	svc, tg := newTestService(t)

	if err := svc.HandleMessage(customerMessage(101, "привет")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	msg, _ := tg.lastMessageTo(101)
	if msg.text != chooseProductFirstText {
		t.Errorf("expected restart hint, got %q", msg.text)
	}
}

func TestApproveNotifiesCustomerAndEditsCard(t *testing.T) {
	svc, tg := newTestService(t)
	orderID := runOrderFlow(t, svc, tg, 101)

	cb := callback(testAdminID, "approve_"+itoa(orderID))
	if err := svc.HandleCallback(cb); err != nil {
		t.Fatalf("approve: %v", err)
	}

	msg, _ := tg.lastMessageTo(101)
	if !strings.Contains(msg.text, "подтвержден") {
		t.Errorf("customer not notified of approval: %q", msg.text)
	}
	lastEdit := tg.edits[len(tg.edits)-1]
	if !strings.Contains(lastEdit.text, "подтвержден") {
		t.Errorf("admin card not updated: %q", lastEdit.text)
	}

	// Повторное решение - короткий ответ на callback, без новых уведомлений.
	sent := len(tg.messages)
	if err := svc.HandleCallback(cb); err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if len(tg.messages) != sent {
		t.Error("repeated approval re-notified the customer")
	}
	if tg.callbacks[len(tg.callbacks)-1] != orderProcessedText {
		t.Errorf("expected %q callback answer, got %q", orderProcessedText, tg.callbacks[len(tg.callbacks)-1])
	}
}

func TestDecisionCallbackRequiresAdmin(t *testing.T) {
	svc, tg := newTestService(t)
	orderID := runOrderFlow(t, svc, tg, 101)

	if err := svc.HandleCallback(callback(101, "approve_"+itoa(orderID))); err != nil {
		t.Fatalf("approve by customer: %v", err)
	}
	if tg.callbacks[len(tg.callbacks)-1] != noAccessText {
		t.Errorf("expected access denial, got %q", tg.callbacks[len(tg.callbacks)-1])
	}

	order, ok := svc.store.Order(orderID)
	if !ok || order.Status.Terminal() {
		t.Error("customer managed to close own order")
	}
}

func TestAdminPanel(t *testing.T) {
	svc, tg := newTestService(t)

	if err := svc.HandleMessage(customerMessage(101, "/admin")); err != nil {
		t.Fatalf("/admin by customer: %v", err)
	}
	msg, _ := tg.lastMessageTo(101)
	if msg.text != noAccessCommandText {
		t.Errorf("expected access denial, got %q", msg.text)
	}

	admin := customerMessage(testAdminID, "/admin")
	if err := svc.HandleMessage(admin); err != nil {
		t.Fatalf("/admin empty: %v", err)
	}
	msg, _ = tg.lastMessageTo(testAdminID)
	if msg.text != noPendingOrdersText {
		t.Errorf("expected empty-queue message, got %q", msg.text)
	}

	runOrderFlow(t, svc, tg, 101)
	if err := svc.HandleMessage(admin); err != nil {
		t.Fatalf("/admin with orders: %v", err)
	}
	card, _ := tg.lastMessageTo(testAdminID)
	if !strings.Contains(card.text, "Новый заказ") || card.keyboard == nil {
		t.Errorf("admin panel card unexpected: %q", card.text)
	}
}

func TestReplyFlowDeliversAndClearsSlot(t *testing.T) {
	svc, tg := newTestService(t)
	orderID := runOrderFlow(t, svc, tg, 101)

	if err := svc.HandleCallback(callback(testAdminID, "reply_101_"+itoa(orderID))); err != nil {
		t.Fatalf("reply callback: %v", err)
	}
	prompt, _ := tg.lastMessageTo(testAdminID)
	if !strings.Contains(prompt.text, "Жду сообщение") {
		t.Errorf("unexpected reply prompt: %q", prompt.text)
	}

	adminMsg := customerMessage(testAdminID, "Ваш заказ будет завтра")
	if err := svc.HandleMessage(adminMsg); err != nil {
		t.Fatalf("admin reply: %v", err)
	}

	delivered, _ := tg.lastMessageTo(101)
	if !strings.Contains(delivered.text, "Ваш заказ будет завтра") {
		t.Errorf("customer did not receive reply: %q", delivered.text)
	}
	if !strings.Contains(delivered.text, itoa(orderID)) {
		t.Errorf("reply not tagged with order id: %q", delivered.text)
	}

	// Слот одноразовый: следующее сообщение оператора никуда не уходит.
	before := len(tg.messages)
	if err := svc.HandleMessage(customerMessage(testAdminID, "ещё одно")); err != nil {
		t.Fatalf("second admin message: %v", err)
	}
	for _, m := range tg.messages[before:] {
		if m.chatID == 101 {
			t.Error("customer received message after slot was cleared")
		}
	}
}

func TestSendCommandForwardsNextUpload(t *testing.T) {
	svc, tg := newTestService(t)
	orderID := runOrderFlow(t, svc, tg, 101)

	if err := svc.HandleMessage(customerMessage(101, "/send "+itoa(orderID))); err != nil {
		t.Fatalf("/send by customer: %v", err)
	}
	msg, _ := tg.lastMessageTo(101)
	if msg.text != noAccessText {
		t.Errorf("expected access denial, got %q", msg.text)
	}

	if err := svc.HandleMessage(customerMessage(testAdminID, "/send")); err != nil {
		t.Fatalf("/send without args: %v", err)
	}
	msg, _ = tg.lastMessageTo(testAdminID)
	if msg.text != sendUsageText {
		t.Errorf("expected usage hint, got %q", msg.text)
	}

	if err := svc.HandleMessage(customerMessage(testAdminID, "/send 12345")); err != nil {
		t.Fatalf("/send unknown order: %v", err)
	}
	msg, _ = tg.lastMessageTo(testAdminID)
	if msg.text != orderNotFoundText {
		t.Errorf("expected not-found message, got %q", msg.text)
	}

	if err := svc.HandleMessage(customerMessage(testAdminID, "/send "+itoa(orderID))); err != nil {
		t.Fatalf("/send: %v", err)
	}

	upload := customerMessage(testAdminID, "")
	upload.PhotoID = "photo-file-id"
	upload.MessageID = 77
	if err := svc.HandleMessage(upload); err != nil {
		t.Fatalf("admin upload: %v", err)
	}

	if len(tg.forwards) == 0 {
		t.Fatal("upload not forwarded")
	}
	fwd := tg.forwards[len(tg.forwards)-1]
	if fwd.chatID != 101 || fwd.messageID != 77 {
		t.Errorf("unexpected forward: %+v", fwd)
	}
	ack, _ := tg.lastMessageTo(testAdminID)
	if !strings.Contains(ack.text, "успешно отправлено") {
		t.Errorf("admin ack unexpected: %q", ack.text)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
