package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mining-system/models"
	"mining-system/store"
)

// Referrals — реферальный движок: связь «пригласивший → приглашённый»,
// подтверждение связи ровно один раз (на первой покупке приглашённого)
// и начисление награды рефереру.
type Referrals struct {
	store  store.Store
	ledger *Ledger
	locks  *Locks
	reward decimal.Decimal
	now    func() time.Time
}

func NewReferrals(s store.Store, ledger *Ledger, locks *Locks, reward decimal.Decimal) *Referrals {
	return &Referrals{store: s, ledger: ledger, locks: locks, reward: reward, now: time.Now}
}

// Resolve находит пользователя по реферальному коду.
// Несуществующий код — ErrInvalidReferralCode: регистрация с таким кодом
// прерывается целиком, аккаунт не создаётся.
func (s *Referrals) Resolve(ctx context.Context, referCode string) (*models.User, error) {
	referrer, err := s.store.UserByReferCode(ctx, referCode)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrInvalidReferralCode
	}
	if err != nil {
		return nil, err
	}
	return referrer, nil
}

// Link создаёт неподтверждённую реферальную связь при регистрации.
func (s *Referrals) Link(ctx context.Context, referrerID, referredID string) error {
	r := &models.Referral{
		ID:         uuid.NewString(),
		ReferrerID: referrerID,
		ReferredID: referredID,
		IsValid:    false,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateReferral(ctx, r); err != nil {
		return err
	}
	log.Printf("🤝 Реферальная связь создана: %s → %s", referrerID, referredID)
	return nil
}

// OnFirstPurchase подтверждает связь приглашённого и начисляет награду рефереру.
// No-op, если связи нет или она уже подтверждена: CAS в хранилище гарантирует,
// что награда начисляется не более одного раза даже при двойном вызове.
func (s *Referrals) OnFirstPurchase(ctx context.Context, referredID string) error {
	r, err := s.store.ReferralByReferred(ctx, referredID)
	if err != nil {
		return err
	}
	if r == nil || r.IsValid {
		return nil
	}

	changed, err := s.store.ValidateReferral(ctx, r.ID, s.now())
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	// Аккаунт реферера — другой аккаунт: берём его лок на время начисления
	mu := s.locks.Account(r.ReferrerID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.ledger.Credit(ctx, r.ReferrerID, models.BalanceReferral, s.reward); err != nil {
		return err
	}
	log.Printf("💰 Реферальная награда %s начислена пользователю %s", s.reward, r.ReferrerID)
	return nil
}

// ReferralReport — отчёт пользователя по его рефералам.
type ReferralReport struct {
	ReferCode   string
	Valid       []models.ReferralInfo
	Invalid     []models.ReferralInfo
	TotalEarned decimal.Decimal
}

// Report собирает код пользователя, списки подтверждённых и ожидающих
// рефералов и суммарный заработок (valid × reward).
func (s *Referrals) Report(ctx context.Context, userID string) (*ReferralReport, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	referrals, err := s.store.ReferralsByReferrer(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &ReferralReport{
		ReferCode: user.ReferCode,
		Valid:     []models.ReferralInfo{},
		Invalid:   []models.ReferralInfo{},
	}
	for _, r := range referrals {
		referred, err := s.store.UserByID(ctx, r.ReferredID)
		if errors.Is(err, models.ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		info := models.ReferralInfo{
			Username: referred.Username,
			JoinedAt: r.CreatedAt.UTC().Format(time.RFC3339),
			IsValid:  r.IsValid,
		}
		if r.IsValid {
			report.Valid = append(report.Valid, info)
		} else {
			report.Invalid = append(report.Invalid, info)
		}
	}
	report.TotalEarned = s.reward.Mul(decimal.NewFromInt(int64(len(report.Valid))))
	return report, nil
}
