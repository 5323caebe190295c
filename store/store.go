// Package store — слой хранения: пользователи, ноды, рефералы, журнал выводов.
// Две реализации: Postgres (pgx) для прода и Memory для разработки и тестов.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"mining-system/models"
)

// Store — контракт хранилища. Балансовые мутации атомарны на уровне
// одной записи; сериализацию операций по одному аккаунту обеспечивает
// сервисный слой (per-account lock).
type Store interface {
	// Пользователи
	CreateUser(ctx context.Context, u *models.User) error // models.ErrDuplicateAccount при конфликте username
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByReferCode(ctx context.Context, code string) (*models.User, error)
	// AddToBalance прибавляет delta (может быть отрицательной) к балансу.
	// Уход в минус запрещён: models.ErrInsufficientFunds.
	AddToBalance(ctx context.Context, userID, balanceType string, delta decimal.Decimal) error
	// SetUserFlag устанавливает монотонный флаг. Повторная установка — no-op.
	SetUserFlag(ctx context.Context, userID, flag string) error

	// Ноды
	CreateNode(ctx context.Context, n *models.Node) error
	NodesByUser(ctx context.Context, userID string) ([]models.Node, error)
	// ActiveNode возвращает активную ноду тарифа nodeID или (nil, nil), если её нет.
	ActiveNode(ctx context.Context, userID, nodeID string) (*models.Node, error)
	// CompleteNode переводит ноду в completed (active=false) ровно один раз.
	// Возвращает true, если переход произошёл в этом вызове.
	CompleteNode(ctx context.Context, id string) (bool, error)

	// Рефералы
	CreateReferral(ctx context.Context, r *models.Referral) error
	// ReferralByReferred возвращает связь, где указанный пользователь — приглашённый,
	// или (nil, nil), если её нет.
	ReferralByReferred(ctx context.Context, referredID string) (*models.Referral, error)
	ReferralsByReferrer(ctx context.Context, referrerID string) ([]models.Referral, error)
	// ValidateReferral переводит связь в валидную ровно один раз.
	// Возвращает true, если переход произошёл в этом вызове.
	ValidateReferral(ctx context.Context, id string, at time.Time) (bool, error)

	// Журнал выводов
	CreateWithdrawal(ctx context.Context, w *models.Withdrawal) error
}
