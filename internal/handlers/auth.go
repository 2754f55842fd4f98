package handlers

import (
	"errors"

	"github.com/aiguild/guildtracker/internal/config"
	"github.com/aiguild/guildtracker/internal/middleware"
	"github.com/aiguild/guildtracker/internal/models"
	"github.com/aiguild/guildtracker/internal/services"
	"github.com/aiguild/guildtracker/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(cfg),
	}
}

// Login checks the shared admin credential and issues a token.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, result)
}

// GetCurrentUser reports the claims of the presented token.
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	response.Success(c, gin.H{
		"username": middleware.GetUsername(c),
		"role":     middleware.GetRole(c),
	})
}

// Logout exists for symmetry; tokens are discarded client-side.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success(c, gin.H{"message": "logged out successfully"})
}
