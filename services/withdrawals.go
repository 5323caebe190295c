package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mining-system/models"
	"mining-system/store"
)

// Withdrawals — контроль вывода средств: минимальная сумма и флаг
// доступности свои у каждого типа баланса.
//
//	mine     — минимум 25, требуется покупка любой ноды;
//	referral — минимум 50, требуется покупка топовой ноды.
type Withdrawals struct {
	store       store.Store
	ledger      *Ledger
	locks       *Locks
	minMine     decimal.Decimal
	minReferral decimal.Decimal
	now         func() time.Time
}

func NewWithdrawals(s store.Store, ledger *Ledger, locks *Locks, minMine, minReferral decimal.Decimal) *Withdrawals {
	return &Withdrawals{
		store:       s,
		ledger:      ledger,
		locks:       locks,
		minMine:     minMine,
		minReferral: minReferral,
		now:         time.Now,
	}
}

// Withdraw списывает сумму с баланса и добавляет запись в журнал выводов.
func (s *Withdrawals) Withdraw(ctx context.Context, userID, balanceType string, amount decimal.Decimal) (*models.Withdrawal, error) {
	var minimum decimal.Decimal
	var requiredFlag string
	switch balanceType {
	case models.BalanceMine:
		minimum = s.minMine
		requiredFlag = models.FlagPurchasedNode
	case models.BalanceReferral:
		minimum = s.minReferral
		requiredFlag = models.FlagPurchasedNode4
	default:
		return nil, models.ErrUnknownBalanceType
	}

	if !amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if amount.LessThan(minimum) {
		return nil, models.ErrBelowMinimum
	}

	mu := s.locks.Account(userID)
	mu.Lock()
	defer mu.Unlock()

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	eligible := user.HasPurchasedNode
	if requiredFlag == models.FlagPurchasedNode4 {
		eligible = user.HasPurchasedNode4
	}
	if !eligible {
		return nil, models.ErrNotEligible
	}

	if err := s.ledger.Debit(ctx, userID, balanceType, amount); err != nil {
		return nil, err
	}

	w := &models.Withdrawal{
		ID:          uuid.NewString(),
		UserID:      userID,
		BalanceType: balanceType,
		Amount:      amount,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateWithdrawal(ctx, w); err != nil {
		return nil, err
	}

	log.Printf("💸 Вывод %s TRX с %s-баланса пользователя %s", amount, balanceType, userID)
	return w, nil
}
