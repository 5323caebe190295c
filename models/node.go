package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Node — купленный экземпляр майнинг-ноды. Создаётся при покупке,
// никогда не удаляется; Completed переключается в true ровно один раз
// при начислении выплаты.
type Node struct {
	ID           string          `json:"id" db:"id"`
	UserID       string          `json:"user_id" db:"user_id"`
	NodeID       string          `json:"node_id" db:"node_id"`
	NodeName     string          `json:"node_name" db:"node_name"`
	Price        decimal.Decimal `json:"price" db:"price"`
	MiningAmount decimal.Decimal `json:"mining_amount" db:"mining_amount"`
	DurationDays int             `json:"duration_days" db:"duration_days"`
	PurchaseTime time.Time       `json:"purchase_time" db:"purchase_time"`
	Active       bool            `json:"active" db:"active"`
	Completed    bool            `json:"completed" db:"completed"`
	TxHash       string          `json:"transaction_hash" db:"transaction_hash"`
}

// Duration возвращает срок майнинга ноды.
func (n *Node) Duration() time.Duration {
	return time.Duration(n.DurationDays) * 24 * time.Hour
}

// MaturesAt возвращает момент, когда нода считается отработавшей.
func (n *Node) MaturesAt() time.Time {
	return n.PurchaseTime.Add(n.Duration())
}
