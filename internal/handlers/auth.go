// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/digital-original/internal/services"
	"github.com/javajoker/digital-original/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	response, err := h.authService.IssueToken(caller)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

// GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"identity":    caller.Hex(),
		"roles":       h.authService.RolesOf(caller),
		"token_roles": utils.GetRolesFromContext(c),
	})
}
