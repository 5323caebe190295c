package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"mining-system/models"
)

func seedUser(t *testing.T, m *Memory, id, username string) *models.User {
	t.Helper()
	u := &models.User{
		ID:        id,
		Username:  username,
		Password:  "hash",
		ReferCode: "CODE" + id,
		CreatedAt: time.Now(),
	}
	require.NoError(t, m.CreateUser(context.Background(), u))
	return u
}

func TestMemoryCreateUserDuplicate(t *testing.T) {
	m := NewMemory()
	seedUser(t, m, "1", "alice")

	err := m.CreateUser(context.Background(), &models.User{ID: "2", Username: "alice"})
	require.ErrorIs(t, err, models.ErrDuplicateAccount)
}

func TestMemoryUserLookups(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedUser(t, m, "1", "alice")

	u, err := m.UserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "1", u.ID)

	u, err = m.UserByReferCode(ctx, "CODE1")
	require.NoError(t, err)
	require.Equal(t, "1", u.ID)

	_, err = m.UserByID(ctx, "missing")
	require.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestMemoryAddToBalanceGuardsNegative(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedUser(t, m, "1", "alice")

	require.NoError(t, m.AddToBalance(ctx, "1", models.BalanceMine, decimal.NewFromInt(10)))
	err := m.AddToBalance(ctx, "1", models.BalanceMine, decimal.NewFromInt(-20))
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	u, err := m.UserByID(ctx, "1")
	require.NoError(t, err)
	require.True(t, u.MineBalance.Equal(decimal.NewFromInt(10)))
}

func TestMemoryCompleteNodeIsOneShot(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedUser(t, m, "1", "alice")
	require.NoError(t, m.CreateNode(ctx, &models.Node{ID: "n1", UserID: "1", NodeID: "node1", Active: true}))

	changed, err := m.CompleteNode(ctx, "n1")
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = m.CompleteNode(ctx, "n1")
	require.NoError(t, err)
	require.False(t, changed)

	nodes, err := m.NodesByUser(ctx, "1")
	require.NoError(t, err)
	require.True(t, nodes[0].Completed)
	require.False(t, nodes[0].Active)
}

func TestMemoryValidateReferralIsOneShot(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.CreateReferral(ctx, &models.Referral{ID: "r1", ReferrerID: "1", ReferredID: "2"}))

	at := time.Now()
	changed, err := m.ValidateReferral(ctx, "r1", at)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = m.ValidateReferral(ctx, "r1", at.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, changed)

	r, err := m.ReferralByReferred(ctx, "2")
	require.NoError(t, err)
	require.True(t, r.IsValid)
	require.True(t, r.ValidatedAt.Equal(at))
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedUser(t, m, "1", "alice")

	u, err := m.UserByID(ctx, "1")
	require.NoError(t, err)
	u.MineBalance = decimal.NewFromInt(1000000)

	again, err := m.UserByID(ctx, "1")
	require.NoError(t, err)
	require.True(t, again.MineBalance.IsZero())
}
