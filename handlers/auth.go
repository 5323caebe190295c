package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mining-system/auth"
)

// SignupHandler регистрирует пользователя и выдаёт пару токенов.
func (h *Handler) SignupHandler(c *gin.Context) {
	var req struct {
		Username  string `json:"username" binding:"required"`
		Password  string `json:"password" binding:"required,min=6"`
		ReferCode string `json:"refer_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Signup(c.Request.Context(), req.Username, req.Password, req.ReferCode)
	if err != nil {
		respondError(c, err)
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokenPair(h.cfg, user.ID, user.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Sign up successful! Claim your 25 TRX bonus!",
		"token":         accessToken,
		"refresh_token": refreshToken,
		"user":          userJSON(user),
	})
}

// LoginHandler обрабатывает вход пользователя.
func (h *Handler) LoginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokenPair(h.cfg, user.ID, user.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"token":         accessToken,
		"refresh_token": refreshToken,
		"user":          userJSON(user),
	})
}

// RefreshHandler обновляет пару токенов по refresh-токену.
func (h *Handler) RefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, refreshToken, err := auth.RefreshTokens(h.cfg, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"token":         accessToken,
		"refresh_token": refreshToken,
	})
}
