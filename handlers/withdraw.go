package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"mining-system/monitoring"
)

// WithdrawHandler выводит средства с одного из балансов.
func (h *Handler) WithdrawHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		BalanceType string  `json:"balance_type" binding:"required"`
		Amount      float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.withdrawals.Withdraw(c.Request.Context(), userID, req.BalanceType, decimal.NewFromFloat(req.Amount))
	if err != nil {
		respondError(c, err)
		return
	}
	monitoring.WithdrawalsTotal.WithLabelValues(w.BalanceType).Inc()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Successfully withdrew %s TRX from %s balance", w.Amount, w.BalanceType),
	})
}
