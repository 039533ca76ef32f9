package model

import (
	"time"

	"github.com/google/uuid"
)

// Pet represents an animal under the clinic's care
type Pet struct {
	Base
	OwnerID     uuid.UUID  `json:"owner_id" db:"owner_id"`
	Name        string     `json:"name" db:"name"`
	Species     string     `json:"species" db:"species"`
	Breed       string     `json:"breed" db:"breed"`
	Sex         string     `json:"sex" db:"sex"`
	DateOfBirth *time.Time `json:"date_of_birth" db:"date_of_birth"`
	Weight      float64    `json:"weight" db:"weight"`
	Color       string     `json:"color" db:"color"`
	Notes       string     `json:"notes" db:"notes"`
}

// OwnerContact is the pet owner's contact card, gated by the
// can-view-contact-info capability.
type OwnerContact struct {
	OwnerID uuid.UUID `json:"owner_id" db:"owner_id"`
	Name    string    `json:"name" db:"name"`
	Email   string    `json:"email" db:"email"`
	Phone   *string   `json:"phone" db:"phone"`
	Address string    `json:"address" db:"address"`
}

// Vaccination is a single vaccine administration entry on a pet's history
type Vaccination struct {
	Base
	PetID          uuid.UUID  `json:"pet_id" db:"pet_id"`
	Vaccine        string     `json:"vaccine" db:"vaccine"`
	Batch          string     `json:"batch" db:"batch"`
	AdministeredBy uuid.UUID  `json:"administered_by" db:"administered_by"`
	AdministeredAt time.Time  `json:"administered_at" db:"administered_at"`
	NextDueAt      *time.Time `json:"next_due_at" db:"next_due_at"`
}

// CreatePetRequest represents pet registration parameters
type CreatePetRequest struct {
	OwnerID string  `json:"owner_id" binding:"required,uuid"`
	Name    string  `json:"name" binding:"required"`
	Species string  `json:"species" binding:"required"`
	Breed   string  `json:"breed"`
	Sex     string  `json:"sex" binding:"omitempty,oneof=male female unknown"`
	Weight  float64 `json:"weight"`
	Color   string  `json:"color"`
	Notes   string  `json:"notes"`
}

// UpdatePetRequest represents pet profile update parameters
type UpdatePetRequest struct {
	Name   *string  `json:"name"`
	Breed  *string  `json:"breed"`
	Weight *float64 `json:"weight"`
	Color  *string  `json:"color"`
	Notes  *string  `json:"notes"`
}

// CreateVaccinationRequest represents vaccination entry parameters
type CreateVaccinationRequest struct {
	Vaccine   string     `json:"vaccine" binding:"required"`
	Batch     string     `json:"batch"`
	NextDueAt *time.Time `json:"next_due_at"`
}
