// Package store - менеджер жизненного цикла заказа. Владеет всеми
// изменяемыми контейнерами бота и выполняет переходы статусов; обработчики
// сообщений не трогают состояние напрямую.
package store

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kellowedkill/dnipro/internal/catalog"
	"github.com/kellowedkill/dnipro/internal/models"
)

const (
	orderIDMin = 20000
	orderIDMax = 99999

	// Сколько раз тянем случайный номер, прежде чем перейти к линейному поиску.
	allocAttempts = 32
)

// Store - менеджер заказов. Все операции берут один мьютекс целиком:
// SelectArea, Approve и Reject меняют несколько контейнеров разом,
// и снаружи это должно выглядеть атомарно.
type Store struct {
	mu      sync.Mutex
	adminID int64
	state   State
	snap    Snapshotter
	logger  *zap.Logger

	randInt func(n int) int // подменяется в тестах
}

// New загружает последний снимок состояния и создаёт менеджер.
func New(adminID int64, snap Snapshotter, logger *zap.Logger) (*Store, error) {
	state, found, err := snap.Load()
	if err != nil {
		return nil, err
	}
	if !found {
		state = NewState()
	}
	state.normalize()

	logger.Info("состояние загружено",
		zap.Int("orders", len(state.Orders)),
		zap.Int("pending", len(state.Pending)),
		zap.Int("sessions", len(state.Sessions)),
	)

	return &Store{
		adminID: adminID,
		state:   state,
		snap:    snap,
		logger:  logger,
		randInt: rand.Intn,
	}, nil
}

// IsAdmin сообщает, принадлежит ли идентификатор оператору.
func (s *Store) IsAdmin(userID int64) bool {
	return userID == s.adminID
}

// StartSession начинает новый заказ. Если у пользователя уже есть
// незавершённый заказ - отказывает, ничего не меняя.
func (s *Store) StartSession(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.state.Sessions[userID]; ok && sess.OrderID != 0 {
		if order, ok := s.state.Orders[sess.OrderID]; ok && !order.Status.Terminal() {
			return ErrSessionConflict
		}
	}

	delete(s.state.Sessions, userID)
	delete(s.state.AwaitingPayment, userID)
	return s.persist()
}

// SelectProduct записывает выбранную позицию в сессию. Заказа ещё нет:
// номер появится только после выбора района.
func (s *Store) SelectProduct(userID int64, productKey string) (models.Session, error) {
	product, ok := catalog.ProductByKey(productKey)
	if !ok {
		return models.Session{}, ErrUnknownProduct
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := models.Session{
		UserID:  userID,
		Product: product.Label,
		Price:   product.Price,
	}
	s.state.Sessions[userID] = sess
	return sess, s.persist()
}

// SelectArea завершает сборку заказа: выдаёт номер, ставит статус
// "ожидает оплаты" и кладёт заказ в очередь оператора и в систему записи.
func (s *Store) SelectArea(userID int64, username, areaKey string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.state.Sessions[userID]
	if !ok || sess.Product == "" {
		return models.Order{}, ErrNoActiveSession
	}

	area, ok := catalog.AreaByKey(areaKey)
	if !ok {
		return models.Order{}, ErrUnknownArea
	}

	order := models.Order{
		ID:        s.allocateOrderID(),
		UserID:    userID,
		Username:  username,
		Product:   sess.Product,
		Price:     sess.Price,
		City:      catalog.City,
		Area:      area.Name,
		Status:    models.OrderStatusAwaitingPayment,
		CreatedAt: time.Now(),
	}

	sess.OrderID = order.ID
	sess.City = order.City
	sess.Area = order.Area
	sess.Status = order.Status

	s.state.Sessions[userID] = sess
	s.state.Pending[order.ID] = order
	s.state.Orders[order.ID] = order

	s.logger.Info("создан новый заказ",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.String("product", order.Product),
		zap.String("area", order.Area),
	)

	return order, s.persist()
}

// ChoosePaymentMethod переводит заказ в ожидание подтверждения оплаты и
// отмечает, что от пользователя ждут чек. Повторное нажатие кнопки оплаты
// просто обновляет отметку.
func (s *Store) ChoosePaymentMethod(userID int64, messageID int) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.state.Sessions[userID]
	if !ok || sess.OrderID == 0 {
		return models.Order{}, ErrNoActiveOrder
	}
	order, ok := s.state.Orders[sess.OrderID]
	if !ok || order.Status.Terminal() || order.Status == models.OrderStatusPaid {
		return models.Order{}, ErrNoActiveOrder
	}

	if order.Status == models.OrderStatusAwaitingPayment {
		order.Status = models.OrderStatusAwaitingConfirmation
		s.writeOrder(order)
	}

	s.state.AwaitingPayment[userID] = models.PaymentWait{
		OrderID:   order.ID,
		MessageID: messageID,
	}
	return order, s.persist()
}

// SubmitPaymentProof принимает подтверждение оплаты и переводит заказ
// в статус "оплачен". Пользователь либо числится в ожидающих оплату, либо -
// после перезапуска - просто имеет живой заказ в ожидании подтверждения.
func (s *Store) SubmitPaymentProof(userID int64, proof models.Content) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orderID int64
	if wait, ok := s.state.AwaitingPayment[userID]; ok {
		orderID = wait.OrderID
	} else if sess, ok := s.state.Sessions[userID]; ok && sess.OrderID != 0 {
		if order, ok := s.state.Orders[sess.OrderID]; ok && order.Status == models.OrderStatusAwaitingConfirmation {
			orderID = order.ID
		}
	}
	if orderID == 0 {
		return models.Order{}, ErrNoPendingPayment
	}

	order, ok := s.state.Orders[orderID]
	if !ok {
		// Нарушенный инвариант: ожидание оплаты ссылается на несуществующий заказ.
		delete(s.state.AwaitingPayment, userID)
		s.logger.Error("ожидание оплаты ссылается на несуществующий заказ",
			zap.Int64("order_id", orderID),
			zap.Int64("user_id", userID),
		)
		if err := s.persist(); err != nil {
			return models.Order{}, err
		}
		return models.Order{}, ErrNoPendingPayment
	}

	if order.Status.Terminal() {
		// Оператор уже закрыл заказ; конечный статус не перезаписываем.
		// Устаревшая отметка ожидания могла прийти из старого снимка.
		delete(s.state.AwaitingPayment, userID)
		if err := s.persist(); err != nil {
			return models.Order{}, err
		}
		return models.Order{}, ErrNoPendingPayment
	}

	order.Status = models.OrderStatusPaid
	s.writeOrder(order)
	delete(s.state.AwaitingPayment, userID)

	s.logger.Info("получено подтверждение оплаты",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.String("proof_kind", string(proof.Kind)),
	)

	return order, s.persist()
}

// Decision - результат решения оператора по заказу.
type Decision struct {
	Order models.Order
	// AlreadyTerminal - заказ уже был закрыт раньше; повторное решение
	// ничего не изменило, клиента второй раз не уведомляем.
	AlreadyTerminal bool
}

// Approve подтверждает заказ и убирает его из очереди оператора.
func (s *Store) Approve(orderID int64) (Decision, error) {
	return s.decide(orderID, models.OrderStatusApproved)
}

// Reject отклоняет заказ. Дополнительно сбрасывает сессию клиента,
// чтобы он мог начать новый заказ с /start.
func (s *Store) Reject(orderID int64) (Decision, error) {
	return s.decide(orderID, models.OrderStatusRejected)
}

func (s *Store) decide(orderID int64, status models.OrderStatus) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.state.Orders[orderID]
	if !ok {
		return Decision{}, ErrOrderNotFound
	}
	if order.Status.Terminal() {
		return Decision{Order: order, AlreadyTerminal: true}, nil
	}

	order.Status = status
	s.state.Orders[orderID] = order
	delete(s.state.Pending, orderID)

	if sess, ok := s.state.Sessions[order.UserID]; ok && sess.OrderID == orderID {
		if status == models.OrderStatusRejected {
			delete(s.state.Sessions, order.UserID)
		} else {
			sess.Status = status
			s.state.Sessions[order.UserID] = sess
		}
	}
	// Заказ закрыт - подтверждение оплаты по нему больше не ожидается.
	// Иначе запоздавший скрин после решения оператора вернул бы закрытый
	// заказ обратно в "оплачен".
	if wait, ok := s.state.AwaitingPayment[order.UserID]; ok && wait.OrderID == orderID {
		delete(s.state.AwaitingPayment, order.UserID)
	}

	s.logger.Info("оператор закрыл заказ",
		zap.Int64("order_id", orderID),
		zap.String("status", string(status)),
	)

	return Decision{Order: order}, s.persist()
}

// RequestReply запоминает, кому оператор отправит следующее свободное
// сообщение. Слот одноместный: повторный запрос молча затирает предыдущий.
func (s *Store) RequestReply(adminID, userID, orderID int64) error {
	if adminID != s.adminID {
		return ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Orders[orderID]; !ok {
		return ErrOrderNotFound
	}
	s.state.AdminReply[adminID] = models.ReplyTarget{UserID: userID, OrderID: orderID}
	return s.persist()
}

// DeliverReply выдаёт адресата для свободного сообщения оператора и
// безусловно очищает слот - даже если доставка потом не удастся.
func (s *Store) DeliverReply(adminID int64) (models.ReplyTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.state.AdminReply[adminID]
	if !ok {
		return models.ReplyTarget{}, ErrNoReplyTarget
	}
	delete(s.state.AdminReply, adminID)
	if err := s.persist(); err != nil {
		return target, err
	}
	return target, nil
}

// ArmForward взводит одноразовый слот команды /send: следующий аплоуд
// оператора уйдёт пользователю указанного заказа.
func (s *Store) ArmForward(adminID, orderID int64) (models.Order, error) {
	if adminID != s.adminID {
		return models.Order{}, ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.state.Orders[orderID]
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	s.state.AdminForward[adminID] = orderID
	return order, s.persist()
}

// TakeForward снимает взведённый слот /send и возвращает заказ-адресат.
func (s *Store) TakeForward(adminID int64) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orderID, ok := s.state.AdminForward[adminID]
	if !ok {
		return models.Order{}, ErrNoForwardTarget
	}
	delete(s.state.AdminForward, adminID)

	order, ok := s.state.Orders[orderID]
	if !ok {
		if err := s.persist(); err != nil {
			return models.Order{}, err
		}
		return models.Order{}, ErrOrderNotFound
	}
	return order, s.persist()
}

// Order возвращает заказ из системы записи.
func (s *Store) Order(orderID int64) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.state.Orders[orderID]
	return order, ok
}

// PendingOrders возвращает очередь оператора, старые заказы первыми.
func (s *Store) PendingOrders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Order, 0, len(s.state.Pending))
	for _, order := range s.state.Pending {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// writeOrder обновляет заказ в системе записи и, если он ещё в очереди
// оператора, в очереди тоже. Сессия владельца получает новый статус.
// Вызывается под мьютексом.
func (s *Store) writeOrder(order models.Order) {
	s.state.Orders[order.ID] = order
	if _, ok := s.state.Pending[order.ID]; ok {
		s.state.Pending[order.ID] = order
	}
	if sess, ok := s.state.Sessions[order.UserID]; ok && sess.OrderID == order.ID {
		sess.Status = order.Status
		s.state.Sessions[order.UserID] = sess
	}
}

// allocateOrderID выдаёт свободный номер заказа из [orderIDMin, orderIDMax].
// Случайная выборка с проверкой занятости; после allocAttempts неудач -
// линейный проход по кольцу. Вызывается под мьютексом.
func (s *Store) allocateOrderID() int64 {
	span := orderIDMax - orderIDMin + 1
	for i := 0; i < allocAttempts; i++ {
		id := int64(orderIDMin + s.randInt(span))
		if _, busy := s.state.Orders[id]; !busy {
			return id
		}
	}

	id := int64(orderIDMin + s.randInt(span))
	for i := 0; i < span; i++ {
		if _, busy := s.state.Orders[id]; !busy {
			return id
		}
		id++
		if id > orderIDMax {
			id = orderIDMin
		}
	}
	// Диапазон исчерпан полностью; на практике недостижимо.
	return id
}

func (s *Store) persist() error {
	if err := s.snap.Save(s.state); err != nil {
		s.logger.Error("ошибка сохранения снимка состояния", zap.Error(err))
		return err
	}
	return nil
}
