package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/service"
	"github.com/prohmpiriya/event-marketplace/pkg/response"
)

// AuthHandler handles sign-up, sign-in and the current user
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, dto.NewUserResponse(user))
}

// Signin handles POST /auth/signin
func (h *AuthHandler) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.authService.Signin(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, resp)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), principal(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dto.NewUserResponse(user))
}
