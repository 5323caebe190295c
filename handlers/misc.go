package handlers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler — проверка живости сервиса.
func (h *Handler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ConfigHandler отдаёт публичную конфигурацию: адрес приёма TRX и каталог нод.
func (h *Handler) ConfigHandler(c *gin.Context) {
	nodes := gin.H{}
	for _, cfg := range h.catalog.All() {
		nodes[cfg.ID] = catalogEntry(cfg)
	}
	c.JSON(http.StatusOK, gin.H{
		"trx_address": h.cfg.TRXAddress,
		"nodes":       nodes,
	})
}

// MockWithdrawalsHandler — случайная лента выводов для анимации на главной.
func (h *Handler) MockWithdrawalsHandler(c *gin.Context) {
	withdrawals := make([]gin.H, 0, 10)
	now := time.Now().UTC()
	for i := 0; i < 10; i++ {
		withdrawals = append(withdrawals, gin.H{
			"amount":    25 + rand.Intn(9976),
			"timestamp": now.Add(-time.Duration(rand.Intn(3600)) * time.Second).Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}
