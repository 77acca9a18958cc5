package store

import "errors"

var (
	ErrSessionConflict  = errors.New("у пользователя уже есть незавершённый заказ")
	ErrUnknownProduct   = errors.New("неизвестный товар")
	ErrUnknownArea      = errors.New("неизвестный район")
	ErrNoActiveSession  = errors.New("нет активной сессии")
	ErrNoActiveOrder    = errors.New("нет активного заказа")
	ErrNoPendingPayment = errors.New("оплата не ожидается")
	ErrOrderNotFound    = errors.New("заказ не найден")
	ErrUnauthorized     = errors.New("нет доступа")
	ErrNoReplyTarget    = errors.New("нет ожидающего ответа оператора")
	ErrNoForwardTarget  = errors.New("нет заказа для пересылки")
)
