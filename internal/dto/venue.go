package dto

import (
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
)

type CreateVenueRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Address  string `json:"address" binding:"required"`
	City     string `json:"city" binding:"required,max=100"`
	State    string `json:"state" binding:"max=100"`
	ZipCode  string `json:"zip_code" binding:"max=20"`
	Country  string `json:"country" binding:"max=100"`
	Capacity int    `json:"capacity" binding:"required"`
}

func (r *CreateVenueRequest) Validate() (bool, string) {
	if r.Name == "" {
		return false, "Venue name is required"
	}
	if r.Capacity < 1 {
		return false, "Capacity must be at least 1"
	}
	return true, ""
}

type UpdateVenueRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=255"`
	Address  *string `json:"address"`
	City     *string `json:"city" binding:"omitempty,max=100"`
	State    *string `json:"state" binding:"omitempty,max=100"`
	ZipCode  *string `json:"zip_code" binding:"omitempty,max=20"`
	Country  *string `json:"country" binding:"omitempty,max=100"`
	Capacity *int    `json:"capacity"`
}

func (r *UpdateVenueRequest) Validate() (bool, string) {
	if r.Capacity != nil && *r.Capacity < 1 {
		return false, "Capacity must be at least 1"
	}
	return true, ""
}

type VenueResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
	Country    string `json:"country"`
	Capacity   int    `json:"capacity"`
	EventCount *int   `json:"event_count,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func NewVenueResponse(v *domain.Venue) *VenueResponse {
	return &VenueResponse{
		ID:        v.ID,
		Name:      v.Name,
		Address:   v.Address,
		City:      v.City,
		State:     v.State,
		ZipCode:   v.ZipCode,
		Country:   v.Country,
		Capacity:  v.Capacity,
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
		UpdatedAt: v.UpdatedAt.Format(time.RFC3339),
	}
}

// WithEventCount attaches the number of events held at the venue
func (r *VenueResponse) WithEventCount(n int) *VenueResponse {
	r.EventCount = &n
	return r
}

type VenueListFilter struct {
	Name        string `form:"name"`
	City        string `form:"city"`
	MinCapacity int    `form:"min_capacity"`
	Page
}
