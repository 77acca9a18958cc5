package database

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/kellowedkill/dnipro/internal/store"
)

// Имена контейнеров в таблице snapshots.
const (
	snapSessions        = "sessions"
	snapPending         = "pending_orders"
	snapOrders          = "all_orders"
	snapAwaitingPayment = "awaiting_payment"
	snapAdminReply      = "awaiting_admin_reply"
	snapAdminForward    = "awaiting_admin_forward"
)

// SnapshotRepository хранит состояние бота в Postgres: по строке JSONB на
// контейнер, все строки обновляются в одной транзакции. Либо записывается
// весь снимок, либо ничего - рассинхрон контейнеров после падения исключён.
type SnapshotRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSnapshotRepository создает новый репозиторий снимков состояния
func NewSnapshotRepository(db *sqlx.DB, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     db,
		logger: logger,
	}
}

// Save записывает все контейнеры одним снимком.
func (r *SnapshotRepository) Save(state store.State) error {
	containers := []struct {
		name string
		data interface{}
	}{
		{snapSessions, state.Sessions},
		{snapPending, state.Pending},
		{snapOrders, state.Orders},
		{snapAwaitingPayment, state.AwaitingPayment},
		{snapAdminReply, state.AdminReply},
		{snapAdminForward, state.AdminForward},
	}

	// Начинаем транзакцию
	tx, err := r.db.Beginx()
	if err != nil {
		r.logger.Error("Ошибка при начале транзакции", zap.Error(err))
		return err
	}
	defer tx.Rollback() // Откатываем транзакцию в случае ошибки

	query := `
        INSERT INTO snapshots (name, data, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (name) DO UPDATE SET
            data = EXCLUDED.data,
            updated_at = EXCLUDED.updated_at
    `

	for _, c := range containers {
		payload, err := json.Marshal(c.data)
		if err != nil {
			r.logger.Error("Ошибка сериализации контейнера",
				zap.Error(err),
				zap.String("container", c.name),
			)
			return fmt.Errorf("не удалось сериализовать контейнер %s: %w", c.name, err)
		}

		if _, err := tx.Exec(query, c.name, payload); err != nil {
			r.logger.Error("Ошибка записи контейнера",
				zap.Error(err),
				zap.String("container", c.name),
			)
			return err
		}
	}

	// Фиксируем транзакцию
	if err := tx.Commit(); err != nil {
		r.logger.Error("Ошибка при фиксации транзакции", zap.Error(err))
		return err
	}

	return nil
}

// Load читает последний снимок целиком. Второе значение false - снимка нет
// (первый запуск).
func (r *SnapshotRepository) Load() (store.State, bool, error) {
	rows := []struct {
		Name string `db:"name"`
		Data []byte `db:"data"`
	}{}

	err := r.db.Select(&rows, `SELECT name, data FROM snapshots`)
	if err != nil {
		r.logger.Error("Ошибка чтения снимка состояния", zap.Error(err))
		return store.State{}, false, err
	}
	if len(rows) == 0 {
		return store.NewState(), false, nil
	}

	state := store.NewState()
	for _, row := range rows {
		var dst interface{}
		switch row.Name {
		case snapSessions:
			dst = &state.Sessions
		case snapPending:
			dst = &state.Pending
		case snapOrders:
			dst = &state.Orders
		case snapAwaitingPayment:
			dst = &state.AwaitingPayment
		case snapAdminReply:
			dst = &state.AdminReply
		case snapAdminForward:
			dst = &state.AdminForward
		default:
			r.logger.Warn("Неизвестный контейнер в снимке", zap.String("container", row.Name))
			continue
		}

		if err := json.Unmarshal(row.Data, dst); err != nil {
			r.logger.Error("Ошибка десериализации контейнера",
				zap.Error(err),
				zap.String("container", row.Name),
			)
			return store.State{}, false, fmt.Errorf("не удалось прочитать контейнер %s: %w", row.Name, err)
		}
	}

	return state, true, nil
}
