package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mining-system/models"
	"mining-system/store"
)

// Accounts — регистрация и вход. Пароли хранятся только как bcrypt-хеши.
type Accounts struct {
	store     store.Store
	ledger    *Ledger
	referrals *Referrals
	bonus     decimal.Decimal
	now       func() time.Time
}

func NewAccounts(s store.Store, ledger *Ledger, referrals *Referrals, bonus decimal.Decimal) *Accounts {
	return &Accounts{store: s, ledger: ledger, referrals: referrals, bonus: bonus, now: time.Now}
}

// generateReferCode — первые 8 символов UUID в верхнем регистре.
func generateReferCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Signup регистрирует пользователя. Реферальный код (если передан)
// проверяется до создания аккаунта: невалидный код прерывает регистрацию
// целиком. Бонус начисляется через леджер на mine-баланс.
func (s *Accounts) Signup(ctx context.Context, username, password, referCode string) (*models.User, error) {
	var referrer *models.User
	if referCode != "" {
		var err error
		referrer, err = s.referrals.Resolve(ctx, referCode)
		if err != nil {
			return nil, err
		}
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:              uuid.NewString(),
		Username:        username,
		Password:        hash,
		ReferCode:       generateReferCode(),
		MineBalance:     decimal.Zero,
		ReferralBalance: decimal.Zero,
		CreatedAt:       s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.bonus.IsPositive() {
		if err := s.ledger.Credit(ctx, user.ID, models.BalanceMine, s.bonus); err != nil {
			return nil, err
		}
		user.MineBalance = s.bonus
	}

	if referrer != nil {
		if err := s.referrals.Link(ctx, referrer.ID, user.ID); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Зарегистрирован пользователь %s (refer_code=%s)", username, user.ReferCode)
	return user, nil
}

// Login проверяет логин и пароль; любые несовпадения — ErrInvalidCredentials.
func (s *Accounts) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !models.CheckPasswordHash(password, user.Password) {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}
