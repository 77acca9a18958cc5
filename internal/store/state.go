package store

import "github.com/kellowedkill/dnipro/internal/models"

// State - все контейнеры менеджера заказов одним снимком.
// Ключи int64 при сериализации в JSON становятся десятичными строками,
// поэтому сохранённый формат совпадает с привычной раскладкой "id → запись".
type State struct {
	// Sessions - рабочие копии заказов, по одной на пользователя.
	Sessions map[int64]models.Session `json:"sessions"`
	// Pending - заказы, ожидающие действия оператора.
	Pending map[int64]models.Order `json:"pending_orders"`
	// Orders - все когда-либо созданные заказы, система записи.
	Orders map[int64]models.Order `json:"all_orders"`
	// AwaitingPayment - кто должен прислать подтверждение оплаты и по какому заказу.
	AwaitingPayment map[int64]models.PaymentWait `json:"awaiting_payment"`
	// AdminReply - одноместный "почтовый ящик" оператора для свободного ответа.
	AdminReply map[int64]models.ReplyTarget `json:"awaiting_admin_reply"`
	// AdminForward - одноразовый слот команды /send: следующий аплоуд
	// оператора пересылается пользователю этого заказа как есть.
	AdminForward map[int64]int64 `json:"awaiting_admin_forward"`
}

func NewState() State {
	return State{
		Sessions:        make(map[int64]models.Session),
		Pending:         make(map[int64]models.Order),
		Orders:          make(map[int64]models.Order),
		AwaitingPayment: make(map[int64]models.PaymentWait),
		AdminReply:      make(map[int64]models.ReplyTarget),
		AdminForward:    make(map[int64]int64),
	}
}

// normalize доинициализирует контейнеры после загрузки снимка:
// в старом снимке какого-то контейнера могло не быть.
func (s *State) normalize() {
	if s.Sessions == nil {
		s.Sessions = make(map[int64]models.Session)
	}
	if s.Pending == nil {
		s.Pending = make(map[int64]models.Order)
	}
	if s.Orders == nil {
		s.Orders = make(map[int64]models.Order)
	}
	if s.AwaitingPayment == nil {
		s.AwaitingPayment = make(map[int64]models.PaymentWait)
	}
	if s.AdminReply == nil {
		s.AdminReply = make(map[int64]models.ReplyTarget)
	}
	if s.AdminForward == nil {
		s.AdminForward = make(map[int64]int64)
	}
}

// Snapshotter сохраняет и загружает состояние целиком. Реализация обязана
// писать все контейнеры атомарно: частично записанный снимок хуже отсутствующего.
type Snapshotter interface {
	Save(state State) error
	// Load возвращает false вторым значением, если снимка ещё нет.
	Load() (State, bool, error)
}
