package models

import "time"

type OrderStatus string

const (
	OrderStatusAwaitingPayment      OrderStatus = "awaiting_payment"
	OrderStatusAwaitingConfirmation OrderStatus = "awaiting_confirmation"
	OrderStatusPaid                 OrderStatus = "paid"
	OrderStatusApproved             OrderStatus = "approved"
	OrderStatusRejected             OrderStatus = "rejected"
)

// Terminal сообщает, является ли статус конечным:
// после него заказ больше не меняется.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusApproved || s == OrderStatusRejected
}

type Order struct {
	ID        int64       `json:"order_id"`
	UserID    int64       `json:"user_id"`   // ID пользователя в Telegram
	Username  string      `json:"username"`  // Username пользователя
	Product   string      `json:"product"`   // Полное название позиции из прайса
	Price     string      `json:"price"`     // Цена, извлечённая из названия
	City      string      `json:"city"`
	Area      string      `json:"area"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// Session - рабочая копия заказа, который пользователь собирает прямо сейчас.
// Одна сессия на пользователя.
type Session struct {
	UserID  int64       `json:"user_id"`
	Product string      `json:"product"`
	Price   string      `json:"price"`
	OrderID int64       `json:"order_id,omitempty"`
	City    string      `json:"city,omitempty"`
	Area    string      `json:"area,omitempty"`
	Status  OrderStatus `json:"status,omitempty"`
}

// PaymentWait - отметка о том, что пользователь должен прислать подтверждение
// оплаты по конкретному заказу.
type PaymentWait struct {
	OrderID   int64 `json:"order_id"`
	MessageID int   `json:"message_id"` // сообщение, из которого запросили оплату
}

// ReplyTarget - кому оператор отправит следующее свободное сообщение.
type ReplyTarget struct {
	UserID  int64 `json:"user_id"`
	OrderID int64 `json:"order_id"`
}
