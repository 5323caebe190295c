package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mining-system/monitoring"
)

// NodesStatusHandler возвращает состояние всех тарифов для пользователя.
func (h *Handler) NodesStatusHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	statuses, err := h.nodes.Status(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := gin.H{}
	for id, s := range statuses {
		var purchaseTime interface{}
		if s.PurchaseTime != nil {
			purchaseTime = s.PurchaseTime.UTC().Format(time.RFC3339)
		}
		out[id] = gin.H{
			"config":        catalogEntry(s.Config),
			"owned":         s.Owned,
			"active":        s.Active,
			"progress":      s.Progress,
			"can_rebuy":     s.CanRebuy,
			"purchase_time": purchaseTime,
		}
	}

	c.JSON(http.StatusOK, gin.H{"nodes": out})
}

// PurchaseNodeHandler покупает ноду за подтверждённую TRX-транзакцию.
func (h *Handler) PurchaseNodeHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		NodeID string `json:"node_id" binding:"required"`
		TxHash string `json:"transaction_hash" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node, err := h.nodes.Purchase(c.Request.Context(), userID, req.NodeID, req.TxHash)
	if err != nil {
		respondError(c, err)
		return
	}
	monitoring.NodePurchasesTotal.WithLabelValues(node.NodeID).Inc()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Successfully purchased %s! Mining started.", node.NodeName),
		"node": gin.H{
			"id":            node.ID,
			"name":          node.NodeName,
			"mining_amount": money(node.MiningAmount),
			"duration_days": node.DurationDays,
		},
	})
}
