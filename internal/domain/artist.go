package domain

import "time"

type Artist struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Bio          string    `json:"bio"`
	Genre        string    `json:"genre"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
