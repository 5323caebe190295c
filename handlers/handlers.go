// Package handlers — HTTP-слой поверх сервисов: биндинг запросов,
// фиксированное сопоставление бизнес-ошибок со статусами, формирование JSON.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"mining-system/catalog"
	"mining-system/config"
	"mining-system/models"
	"mining-system/services"
)

type Handler struct {
	cfg         *config.Config
	catalog     *catalog.Catalog
	accounts    *services.Accounts
	ledger      *services.Ledger
	nodes       *services.Nodes
	referrals   *services.Referrals
	withdrawals *services.Withdrawals
}

func New(
	cfg *config.Config,
	cat *catalog.Catalog,
	accounts *services.Accounts,
	ledger *services.Ledger,
	nodes *services.Nodes,
	referrals *services.Referrals,
	withdrawals *services.Withdrawals,
) *Handler {
	return &Handler{
		cfg:         cfg,
		catalog:     cat,
		accounts:    accounts,
		ledger:      ledger,
		nodes:       nodes,
		referrals:   referrals,
		withdrawals: withdrawals,
	}
}

// money переводит decimal в число для JSON-ответа.
func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func userJSON(u *models.User) gin.H {
	return gin.H{
		"id":                  u.ID,
		"username":            u.Username,
		"refer_code":          u.ReferCode,
		"mine_balance":        money(u.MineBalance),
		"referral_balance":    money(u.ReferralBalance),
		"has_purchased_node":  u.HasPurchasedNode,
		"has_purchased_node4": u.HasPurchasedNode4,
	}
}

func catalogEntry(cfg catalog.NodeConfig) gin.H {
	return gin.H{
		"name":          cfg.Name,
		"price":         money(cfg.Price),
		"mining_amount": money(cfg.MiningAmount),
		"duration_days": cfg.DurationDays,
		"gb":            cfg.GB,
	}
}

// currentUserID достаёт userID, положенный auth-middleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}
