package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReferralsHandler возвращает отчёт пользователя по его рефералам.
func (h *Handler) ReferralsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	report, err := h.referrals.Report(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"refer_code":        report.ReferCode,
		"valid_referrals":   report.Valid,
		"invalid_referrals": report.Invalid,
		"total_earned":      money(report.TotalEarned),
	})
}
