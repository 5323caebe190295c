package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal — запись журнала выводов. Только добавляется, никогда не меняется.
type Withdrawal struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"user_id" db:"user_id"`
	BalanceType string          `json:"balance_type" db:"balance_type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt   time.Time       `json:"timestamp" db:"created_at"`
}
