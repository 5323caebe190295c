package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"mining-system/catalog"
	"mining-system/models"
	"mining-system/store"
)

// Nodes — учёт купленных майнинг-нод: покупка, ленивое начисление выплат
// по отработавшим нодам и отчёт о прогрессе по тарифам.
type Nodes struct {
	store     store.Store
	catalog   *catalog.Catalog
	ledger    *Ledger
	referrals *Referrals
	verifier  PaymentVerifier
	locks     *Locks
	now       func() time.Time
}

func NewNodes(s store.Store, cat *catalog.Catalog, ledger *Ledger, referrals *Referrals, verifier PaymentVerifier, locks *Locks) *Nodes {
	return &Nodes{
		store:     s,
		catalog:   cat,
		ledger:    ledger,
		referrals: referrals,
		verifier:  verifier,
		locks:     locks,
		now:       time.Now,
	}
}

// Purchase покупает ноду тарифа nodeID за подтверждённую транзакцию.
// Пока по тарифу есть активная нода, повторная покупка отклоняется.
// При неудаче на любом шаге до создания записи ничего не сохраняется.
func (s *Nodes) Purchase(ctx context.Context, userID, nodeID, txHash string) (*models.Node, error) {
	cfg, ok := s.catalog.Get(nodeID)
	if !ok {
		return nil, models.ErrUnknownNode
	}

	mu := s.locks.Account(userID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.store.ActiveNode(ctx, userID, nodeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrNodeAlreadyActive
	}

	verified, err := s.verifier.Verify(ctx, txHash, cfg.Price)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, models.ErrPaymentUnverified
	}

	// Снимок «первая ли это покупка» — строго до любых мутаций флагов.
	// Лок аккаунта не даёт второй параллельной покупке увидеть то же самое.
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	firstPurchase := !user.HasPurchasedNode

	node := &models.Node{
		ID:           uuid.NewString(),
		UserID:       userID,
		NodeID:       cfg.ID,
		NodeName:     cfg.Name,
		Price:        cfg.Price,
		MiningAmount: cfg.MiningAmount,
		DurationDays: cfg.DurationDays,
		PurchaseTime: s.now(),
		Active:       true,
		Completed:    false,
		TxHash:       txHash,
	}
	if err := s.store.CreateNode(ctx, node); err != nil {
		return nil, err
	}

	if err := s.ledger.SetFlag(ctx, userID, models.FlagPurchasedNode); err != nil {
		return nil, err
	}
	if s.catalog.IsTop(cfg.ID) {
		if err := s.ledger.SetFlag(ctx, userID, models.FlagPurchasedNode4); err != nil {
			return nil, err
		}
	}

	if firstPurchase {
		if err := s.referrals.OnFirstPurchase(ctx, userID); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Нода %s (%s) куплена пользователем %s", cfg.ID, cfg.Name, userID)
	return node, nil
}

// SettleMatured начисляет выплаты по отработавшим нодам аккаунта.
// Вызывается перед каждым чтением балансов. Идемпотентно: переход
// active → completed совершается ровно один раз (CAS в хранилище),
// и только совершивший его вызов начисляет выплату.
func (s *Nodes) SettleMatured(ctx context.Context, userID string) error {
	mu := s.locks.Account(userID)
	mu.Lock()
	defer mu.Unlock()

	return s.settleLocked(ctx, userID)
}

func (s *Nodes) settleLocked(ctx context.Context, userID string) error {
	nodes, err := s.store.NodesByUser(ctx, userID)
	if err != nil {
		return err
	}
	now := s.now()
	for _, n := range nodes {
		if !n.Active || n.Completed || now.Before(n.MaturesAt()) {
			continue
		}
		changed, err := s.store.CompleteNode(ctx, n.ID)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}
		if err := s.ledger.Credit(ctx, userID, models.BalanceMine, n.MiningAmount); err != nil {
			return err
		}
		log.Printf("⛏️ Нода %s отработала: %s TRX начислено пользователю %s", n.NodeID, n.MiningAmount, userID)
	}
	return nil
}

// NodeStatus — состояние тарифа для конкретного пользователя.
type NodeStatus struct {
	Config       catalog.NodeConfig `json:"config"`
	Owned        bool               `json:"owned"`
	Active       bool               `json:"active"`
	Progress     float64            `json:"progress"`
	CanRebuy     bool               `json:"can_rebuy"`
	PurchaseTime *time.Time         `json:"purchase_time"`
}

// Progress возвращает прогресс майнинга ноды в процентах, не выше 100.
func (s *Nodes) Progress(n *models.Node) float64 {
	elapsed := s.now().Sub(n.PurchaseTime)
	if elapsed <= 0 {
		return 0
	}
	progress := elapsed.Seconds() / n.Duration().Seconds() * 100
	if progress > 100 {
		return 100
	}
	return progress
}

// Status возвращает состояние всех тарифов каталога для пользователя.
// Перед чтением начисляет выплаты по отработавшим нодам, поэтому
// завершённый тариф отображается с нулевым прогрессом и доступен к покупке.
func (s *Nodes) Status(ctx context.Context, userID string) (map[string]NodeStatus, error) {
	mu := s.locks.Account(userID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.settleLocked(ctx, userID); err != nil {
		return nil, err
	}

	nodes, err := s.store.NodesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]NodeStatus, len(s.catalog.IDs()))
	for _, cfg := range s.catalog.All() {
		status := NodeStatus{Config: cfg, CanRebuy: true}
		for i := range nodes {
			n := &nodes[i]
			if n.NodeID != cfg.ID || !n.Active {
				continue
			}
			progress := s.Progress(n)
			t := n.PurchaseTime
			status.Owned = true
			status.Active = true
			status.Progress = progress
			status.CanRebuy = progress >= 100
			status.PurchaseTime = &t
			break
		}
		statuses[cfg.ID] = status
	}
	return statuses, nil
}
