package services

import (
	"context"

	"github.com/shopspring/decimal"

	"mining-system/models"
	"mining-system/store"
)

// Ledger — счётная книга аккаунта: два баланса и флаги доступности вывода.
// Все изменения балансов проходят только через Credit/Debit; прямых
// присваиваний полям пользователя в коде нет.
//
// Ledger сам не берёт пер-аккаунтный лок: его держит вызывающий сервис,
// объединяющий несколько шагов в одну логическую операцию.
type Ledger struct {
	store store.Store
}

func NewLedger(s store.Store) *Ledger {
	return &Ledger{store: s}
}

// Credit прибавляет положительную сумму к указанному балансу.
func (l *Ledger) Credit(ctx context.Context, userID, balanceType string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return models.ErrInvalidAmount
	}
	return l.store.AddToBalance(ctx, userID, balanceType, amount)
}

// Debit списывает положительную сумму; при нехватке средств — ErrInsufficientFunds.
func (l *Ledger) Debit(ctx context.Context, userID, balanceType string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return models.ErrInvalidAmount
	}
	return l.store.AddToBalance(ctx, userID, balanceType, amount.Neg())
}

// SetFlag устанавливает монотонный флаг; повторный вызов — no-op.
func (l *Ledger) SetFlag(ctx context.Context, userID, flag string) error {
	return l.store.SetUserFlag(ctx, userID, flag)
}

// Snapshot возвращает согласованный снимок балансов и флагов аккаунта.
func (l *Ledger) Snapshot(ctx context.Context, userID string) (*models.User, error) {
	return l.store.UserByID(ctx, userID)
}
