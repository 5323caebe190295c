package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"mining-system/catalog"
	"mining-system/models"
	"mining-system/store"
)

const validTxHash = "abcdef1234567890"

// fakeClock — управляемое время для тестов на созревание нод.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type env struct {
	st          *store.Memory
	cat         *catalog.Catalog
	locks       *Locks
	ledger      *Ledger
	referrals   *Referrals
	nodes       *Nodes
	withdrawals *Withdrawals
	accounts    *Accounts
	clock       *fakeClock
}

func newEnv(t *testing.T) *env {
	t.Helper()

	st := store.NewMemory()
	cat := catalog.Default()
	locks := NewLocks()
	ledger := NewLedger(st)
	referrals := NewReferrals(st, ledger, locks, decimal.NewFromInt(50))
	nodes := NewNodes(st, cat, ledger, referrals, MockTronVerifier{}, locks)
	withdrawals := NewWithdrawals(st, ledger, locks, decimal.NewFromInt(25), decimal.NewFromInt(50))
	accounts := NewAccounts(st, ledger, referrals, decimal.NewFromInt(25))

	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	referrals.now = clock.Now
	nodes.now = clock.Now
	withdrawals.now = clock.Now
	accounts.now = clock.Now

	return &env{
		st:          st,
		cat:         cat,
		locks:       locks,
		ledger:      ledger,
		referrals:   referrals,
		nodes:       nodes,
		withdrawals: withdrawals,
		accounts:    accounts,
		clock:       clock,
	}
}

func (e *env) signup(t *testing.T, username, referCode string) *models.User {
	t.Helper()
	user, err := e.accounts.Signup(context.Background(), username, "password123", referCode)
	require.NoError(t, err)
	return user
}

func (e *env) purchase(t *testing.T, userID, nodeID string) *models.Node {
	t.Helper()
	node, err := e.nodes.Purchase(context.Background(), userID, nodeID, validTxHash)
	require.NoError(t, err)
	return node
}

func (e *env) user(t *testing.T, userID string) *models.User {
	t.Helper()
	user, err := e.st.UserByID(context.Background(), userID)
	require.NoError(t, err)
	return user
}
