package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/service"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/utils"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrAccountInactive) {
			utils.Error(c, 401, "ACCOUNT_INACTIVE", "Account is inactive")
			return
		}
		utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	utils.Success(c, 200, "Login successful", gin.H{
		"token": token,
	})
}
