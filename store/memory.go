package store

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"mining-system/models"
)

// Memory — хранилище в памяти. Используется в разработке (STORE_BACKEND=memory)
// и в тестах.
type Memory struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	nodes       map[string]*models.Node
	referrals   map[string]*models.Referral
	withdrawals []models.Withdrawal
}

func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]*models.User),
		nodes:     make(map[string]*models.Node),
		referrals: make(map[string]*models.Referral),
	}
}

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return models.ErrDuplicateAccount
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) UserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) UserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *Memory) UserByReferCode(_ context.Context, code string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ReferCode == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *Memory) AddToBalance(_ context.Context, userID, balanceType string, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	switch balanceType {
	case models.BalanceMine:
		next := u.MineBalance.Add(delta)
		if next.IsNegative() {
			return models.ErrInsufficientFunds
		}
		u.MineBalance = next
	case models.BalanceReferral:
		next := u.ReferralBalance.Add(delta)
		if next.IsNegative() {
			return models.ErrInsufficientFunds
		}
		u.ReferralBalance = next
	default:
		return models.ErrUnknownBalanceType
	}
	return nil
}

func (m *Memory) SetUserFlag(_ context.Context, userID, flag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	switch flag {
	case models.FlagPurchasedNode:
		u.HasPurchasedNode = true
	case models.FlagPurchasedNode4:
		u.HasPurchasedNode4 = true
	}
	return nil
}

func (m *Memory) CreateNode(_ context.Context, n *models.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *n
	m.nodes[n.ID] = &cp
	return nil
}

func (m *Memory) NodesByUser(_ context.Context, userID string) ([]models.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Node
	for _, n := range m.nodes {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *Memory) ActiveNode(_ context.Context, userID, nodeID string) (*models.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, n := range m.nodes {
		if n.UserID == userID && n.NodeID == nodeID && n.Active {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) CompleteNode(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[id]
	if !ok || n.Completed {
		return false, nil
	}
	n.Completed = true
	n.Active = false
	return true, nil
}

func (m *Memory) CreateReferral(_ context.Context, r *models.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *r
	m.referrals[r.ID] = &cp
	return nil
}

func (m *Memory) ReferralByReferred(_ context.Context, referredID string) (*models.Referral, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.referrals {
		if r.ReferredID == referredID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) ReferralsByReferrer(_ context.Context, referrerID string) ([]models.Referral, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Referral
	for _, r := range m.referrals {
		if r.ReferrerID == referrerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *Memory) ValidateReferral(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.referrals[id]
	if !ok || r.IsValid {
		return false, nil
	}
	r.IsValid = true
	t := at
	r.ValidatedAt = &t
	return true, nil
}

func (m *Memory) CreateWithdrawal(_ context.Context, w *models.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.withdrawals = append(m.withdrawals, *w)
	return nil
}

// Withdrawals возвращает журнал выводов пользователя (используется в тестах).
func (m *Memory) Withdrawals(userID string) []models.Withdrawal {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Withdrawal
	for _, w := range m.withdrawals {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out
}
