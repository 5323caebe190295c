package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mining-system/config"
	"mining-system/middleware"
)

// SetupRouter собирает gin-движок с полным набором маршрутов API.
func SetupRouter(cfg *config.Config, logger *zap.Logger, h *Handler) *gin.Engine {
	if cfg.Env == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.SetTrustedProxies(cfg.TrustedProxies)
	r.Use(middleware.SetupCORS(cfg))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthHandler)
		api.GET("/config", h.ConfigHandler)
		api.GET("/mock-withdrawals", h.MockWithdrawalsHandler)

		// Auth-маршруты с ограничением частоты по IP
		authRL := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
		authAPI := api.Group("/auth")
		authAPI.Use(middleware.RateLimit(authRL))
		{
			authAPI.POST("/signup", h.SignupHandler)
			authAPI.POST("/login", h.LoginHandler)
			authAPI.POST("/refresh", h.RefreshHandler)
		}

		// Защищённые эндпоинты
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/user/profile", h.ProfileHandler)
			protected.GET("/nodes", h.NodesStatusHandler)
			protected.POST("/nodes/purchase", h.PurchaseNodeHandler)
			protected.POST("/withdraw", h.WithdrawHandler)
			protected.GET("/referrals", h.ReferralsHandler)
		}
	}

	return r
}
