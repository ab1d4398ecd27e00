package dto

import (
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
)

// SignupRequest registers a new account
type SignupRequest struct {
	FirstName   string   `json:"first_name" binding:"required,max=50"`
	LastName    string   `json:"last_name" binding:"required,max=50"`
	Email       string   `json:"email" binding:"required,email,max=100"`
	Password    string   `json:"password" binding:"required,min=6,max=40"`
	PhoneNumber string   `json:"phone_number" binding:"max=20"`
	Roles       []string `json:"roles"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SigninResponse carries the bearer token and who it belongs to
type SigninResponse struct {
	Token     string   `json:"token"`
	Type      string   `json:"type"`
	ExpiresAt string   `json:"expires_at"`
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Roles     []string `json:"roles"`
}

type UserResponse struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number"`
	Roles       []string `json:"roles"`
	CreatedAt   string   `json:"created_at"`
}

func NewUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Roles:       u.RoleNames(),
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}
