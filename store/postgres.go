package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"mining-system/config"
	"mining-system/models"
)

// queryTimeout ограничивает каждый запрос к БД — операции не должны виснуть.
const queryTimeout = 5 * time.Second

// Postgres — хранилище на PostgreSQL через pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	log.Println("✅ Подключение к PostgreSQL установлено")

	p := &Postgres{pool: pool}
	if err := p.createSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return p, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
	log.Println("🛑 Соединение с PostgreSQL закрыто")
}

func (p *Postgres) createSchema(ctx context.Context) error {
	// pgcrypto для gen_random_uuid()
	if _, err := p.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`); err != nil {
		return err
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(100) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			refer_code VARCHAR(16) UNIQUE NOT NULL,
			mine_balance DECIMAL(18,6) NOT NULL DEFAULT 0 CHECK (mine_balance >= 0),
			referral_balance DECIMAL(18,6) NOT NULL DEFAULT 0 CHECK (referral_balance >= 0),
			has_purchased_node BOOLEAN NOT NULL DEFAULT false,
			has_purchased_node4 BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);`,
		`CREATE INDEX IF NOT EXISTS idx_users_refer_code ON users(refer_code);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			node_id VARCHAR(20) NOT NULL,
			node_name VARCHAR(100) NOT NULL,
			price DECIMAL(18,6) NOT NULL,
			mining_amount DECIMAL(18,6) NOT NULL,
			duration_days INTEGER NOT NULL,
			purchase_time TIMESTAMP NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			completed BOOLEAN NOT NULL DEFAULT false,
			transaction_hash TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_user_id ON nodes(user_id);`,
		`CREATE TABLE IF NOT EXISTS referrals (
			id UUID PRIMARY KEY,
			referrer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			referred_user_id UUID UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			is_valid BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			validated_at TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_referrals_referrer_id ON referrals(referrer_id);`,
		`CREATE TABLE IF NOT EXISTS withdrawals (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			balance_type VARCHAR(20) NOT NULL,
			amount DECIMAL(18,6) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_withdrawals_user_id ON withdrawals(user_id);`,
	}
	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	log.Println("✅ Таблицы users, nodes, referrals, withdrawals готовы")
	return nil
}

// balanceColumn сопоставляет тип баланса с колонкой; защищает от произвольной подстановки.
func balanceColumn(balanceType string) (string, error) {
	switch balanceType {
	case models.BalanceMine:
		return "mine_balance", nil
	case models.BalanceReferral:
		return "referral_balance", nil
	default:
		return "", models.ErrUnknownBalanceType
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (p *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, refer_code, mine_balance, referral_balance,
		                    has_purchased_node, has_purchased_node4, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Username, u.Password, u.ReferCode, u.MineBalance, u.ReferralBalance,
		u.HasPurchasedNode, u.HasPurchasedNode4, u.CreatedAt)
	if isUniqueViolation(err) {
		return models.ErrDuplicateAccount
	}
	return err
}

const userColumns = `id, username, password_hash, refer_code, mine_balance::text, referral_balance::text,
	has_purchased_node, has_purchased_node4, created_at`

func (p *Postgres) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var mine, referral string
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.ReferCode, &mine, &referral,
		&u.HasPurchasedNode, &u.HasPurchasedNode4, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.MineBalance, err = decimal.NewFromString(mine); err != nil {
		return nil, err
	}
	if u.ReferralBalance, err = decimal.NewFromString(referral); err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *Postgres) UserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return p.scanUser(p.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (p *Postgres) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return p.scanUser(p.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (p *Postgres) UserByReferCode(ctx context.Context, code string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return p.scanUser(p.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE refer_code = $1`, code))
}

func (p *Postgres) AddToBalance(ctx context.Context, userID, balanceType string, delta decimal.Decimal) error {
	col, err := balanceColumn(balanceType)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// Защита от ухода в минус прямо в условии UPDATE
	tag, err := p.pool.Exec(ctx,
		`UPDATE users SET `+col+` = `+col+` + $1 WHERE id = $2 AND `+col+` + $1 >= 0`,
		delta, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := p.UserByID(ctx, userID); err != nil {
			return err
		}
		return models.ErrInsufficientFunds
	}
	return nil
}

func (p *Postgres) SetUserFlag(ctx context.Context, userID, flag string) error {
	var col string
	switch flag {
	case models.FlagPurchasedNode:
		col = "has_purchased_node"
	case models.FlagPurchasedNode4:
		col = "has_purchased_node4"
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `UPDATE users SET `+col+` = true WHERE id = $1`, userID)
	return err
}

func (p *Postgres) CreateNode(ctx context.Context, n *models.Node) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx,
		`INSERT INTO nodes (id, user_id, node_id, node_name, price, mining_amount,
		                    duration_days, purchase_time, active, completed, transaction_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		n.ID, n.UserID, n.NodeID, n.NodeName, n.Price, n.MiningAmount,
		n.DurationDays, n.PurchaseTime, n.Active, n.Completed, n.TxHash)
	return err
}

const nodeColumns = `id, user_id, node_id, node_name, price::text, mining_amount::text,
	duration_days, purchase_time, active, completed, transaction_hash`

func scanNode(row pgx.Row) (*models.Node, error) {
	var n models.Node
	var price, amount string
	err := row.Scan(&n.ID, &n.UserID, &n.NodeID, &n.NodeName, &price, &amount,
		&n.DurationDays, &n.PurchaseTime, &n.Active, &n.Completed, &n.TxHash)
	if err != nil {
		return nil, err
	}
	if n.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	if n.MiningAmount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &n, nil
}

func (p *Postgres) NodesByUser(ctx context.Context, userID string) ([]models.Node, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE user_id = $1 ORDER BY purchase_time`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (p *Postgres) ActiveNode(ctx context.Context, userID, nodeID string) (*models.Node, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := scanNode(p.pool.QueryRow(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE user_id = $1 AND node_id = $2 AND active = true LIMIT 1`,
		userID, nodeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return n, err
}

func (p *Postgres) CompleteNode(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// CAS: выплата начисляется только тому вызову, который совершил переход
	tag, err := p.pool.Exec(ctx,
		`UPDATE nodes SET completed = true, active = false WHERE id = $1 AND completed = false`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Postgres) CreateReferral(ctx context.Context, r *models.Referral) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx,
		`INSERT INTO referrals (id, referrer_id, referred_user_id, is_valid, created_at, validated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.ReferrerID, r.ReferredID, r.IsValid, r.CreatedAt, r.ValidatedAt)
	return err
}

func scanReferral(row pgx.Row) (*models.Referral, error) {
	var r models.Referral
	err := row.Scan(&r.ID, &r.ReferrerID, &r.ReferredID, &r.IsValid, &r.CreatedAt, &r.ValidatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Postgres) ReferralByReferred(ctx context.Context, referredID string) (*models.Referral, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	r, err := scanReferral(p.pool.QueryRow(ctx,
		`SELECT id, referrer_id, referred_user_id, is_valid, created_at, validated_at
		 FROM referrals WHERE referred_user_id = $1`, referredID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (p *Postgres) ReferralsByReferrer(ctx context.Context, referrerID string) ([]models.Referral, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx,
		`SELECT id, referrer_id, referred_user_id, is_valid, created_at, validated_at
		 FROM referrals WHERE referrer_id = $1 ORDER BY created_at`, referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Referral
	for rows.Next() {
		r, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (p *Postgres) ValidateReferral(ctx context.Context, id string, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := p.pool.Exec(ctx,
		`UPDATE referrals SET is_valid = true, validated_at = $2 WHERE id = $1 AND is_valid = false`,
		id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Postgres) CreateWithdrawal(ctx context.Context, w *models.Withdrawal) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx,
		`INSERT INTO withdrawals (id, user_id, balance_type, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		w.ID, w.UserID, w.BalanceType, w.Amount, w.CreatedAt)
	return err
}
