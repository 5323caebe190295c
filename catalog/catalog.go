// Package catalog содержит неизменяемый каталог майнинг-нод.
// Значение строится один раз на старте процесса и передаётся явно —
// никаких глобальных изменяемых конфигов.
package catalog

import "github.com/shopspring/decimal"

// NodeConfig — тариф ноды: цена, выплата, срок.
type NodeConfig struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	MiningAmount decimal.Decimal `json:"mining_amount"`
	DurationDays int             `json:"duration_days"`
	GB           int             `json:"gb"`
}

// Catalog — набор тарифов. После создания не меняется.
type Catalog struct {
	nodes map[string]NodeConfig
	order []string
	topID string
}

// New строит каталог из списка тарифов; последний аргумент — id топовой ноды,
// покупка которой открывает вывод реферального баланса.
func New(topID string, nodes ...NodeConfig) *Catalog {
	c := &Catalog{
		nodes: make(map[string]NodeConfig, len(nodes)),
		topID: topID,
	}
	for _, n := range nodes {
		c.nodes[n.ID] = n
		c.order = append(c.order, n.ID)
	}
	return c
}

// Default возвращает стандартный набор нод.
func Default() *Catalog {
	return New("node4",
		NodeConfig{ID: "node1", Name: "64 GB Node", Price: decimal.NewFromInt(50), MiningAmount: decimal.NewFromInt(500), DurationDays: 30, GB: 64},
		NodeConfig{ID: "node2", Name: "128 GB Node", Price: decimal.NewFromInt(75), MiningAmount: decimal.NewFromInt(500), DurationDays: 15, GB: 128},
		NodeConfig{ID: "node3", Name: "256 GB Node", Price: decimal.NewFromInt(100), MiningAmount: decimal.NewFromInt(1000), DurationDays: 7, GB: 256},
		NodeConfig{ID: "node4", Name: "1024 GB Node", Price: decimal.NewFromInt(250), MiningAmount: decimal.NewFromInt(1000), DurationDays: 3, GB: 1024},
	)
}

// Get возвращает тариф по id.
func (c *Catalog) Get(id string) (NodeConfig, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// IsTop сообщает, является ли нода топовой.
func (c *Catalog) IsTop(id string) bool {
	return id == c.topID
}

// TopID возвращает id топовой ноды.
func (c *Catalog) TopID() string {
	return c.topID
}

// IDs возвращает id тарифов в порядке объявления.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// All возвращает тарифы в порядке объявления.
func (c *Catalog) All() []NodeConfig {
	out := make([]NodeConfig, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.nodes[id])
	}
	return out
}
