package models

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Типы балансов пользователя.
const (
	BalanceMine     = "mine"
	BalanceReferral = "referral"
)

// Флаги доступности вывода. Монотонные: однажды установленный флаг не сбрасывается.
const (
	FlagPurchasedNode  = "has_purchased_node"
	FlagPurchasedNode4 = "has_purchased_node4"
)

type User struct {
	ID                string          `json:"id" db:"id"`
	Username          string          `json:"username" db:"username"`
	Password          string          `json:"-" db:"password_hash"`
	ReferCode         string          `json:"refer_code" db:"refer_code"`
	MineBalance       decimal.Decimal `json:"mine_balance" db:"mine_balance"`
	ReferralBalance   decimal.Decimal `json:"referral_balance" db:"referral_balance"`
	HasPurchasedNode  bool            `json:"has_purchased_node" db:"has_purchased_node"`
	HasPurchasedNode4 bool            `json:"has_purchased_node4" db:"has_purchased_node4"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// Balance возвращает баланс указанного типа.
func (u *User) Balance(balanceType string) (decimal.Decimal, error) {
	switch balanceType {
	case BalanceMine:
		return u.MineBalance, nil
	case BalanceReferral:
		return u.ReferralBalance, nil
	default:
		return decimal.Zero, ErrUnknownBalanceType
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
