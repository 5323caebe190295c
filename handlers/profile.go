package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProfileHandler возвращает профиль. Перед чтением балансов начисляются
// выплаты по отработавшим нодам — «сначала начисли, потом показывай».
func (h *Handler) ProfileHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.nodes.SettleMatured(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.ledger.Snapshot(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userJSON(user)})
}
