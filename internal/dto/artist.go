package dto

import (
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
)

type CreateArtistRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Bio          string `json:"bio"`
	Genre        string `json:"genre" binding:"max=100"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone string `json:"contact_phone" binding:"max=50"`
	ImageURL     string `json:"image_url" binding:"omitempty,url"`
}

type UpdateArtistRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=255"`
	Bio          *string `json:"bio"`
	Genre        *string `json:"genre" binding:"omitempty,max=100"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" binding:"omitempty,max=50"`
	ImageURL     *string `json:"image_url" binding:"omitempty,url"`
}

type ArtistResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	Genre        string `json:"genre"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	ImageURL     string `json:"image_url"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func NewArtistResponse(a *domain.Artist) *ArtistResponse {
	return &ArtistResponse{
		ID:           a.ID,
		Name:         a.Name,
		Bio:          a.Bio,
		Genre:        a.Genre,
		ContactEmail: a.ContactEmail,
		ContactPhone: a.ContactPhone,
		ImageURL:     a.ImageURL,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.Format(time.RFC3339),
	}
}

type ArtistListFilter struct {
	Name  string `form:"name"`
	Genre string `form:"genre"`
	Page
}
