package model

import (
	"github.com/google/uuid"
)

// AuthorizationPath records how a diagnosis write was authorized.
type AuthorizationPath string

const (
	// AuthPathUnconditional is a write by a role holding the
	// always-edit-diagnosis capability. The lock is never consulted.
	AuthPathUnconditional AuthorizationPath = "unconditional"
	// AuthPathCodeGated is a write unlocked by redeeming an access code.
	AuthPathCodeGated AuthorizationPath = "code_gated"
)

// MedicalRecord owns the diagnosis field the record lock gates. All other
// fields follow ordinary role-based write permission.
type MedicalRecord struct {
	Base
	PetID       uuid.UUID `json:"pet_id" db:"pet_id"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description" db:"description"`
	Diagnosis   string    `json:"diagnosis" db:"diagnosis"`
	Treatment   string    `json:"treatment" db:"treatment"`
	Medications string    `json:"medications" db:"medications"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
}

// CreateRecordRequest represents record creation parameters
type CreateRecordRequest struct {
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
	Diagnosis   string `json:"diagnosis"`
	Treatment   string `json:"treatment"`
	Medications string `json:"medications"`
}

// UpdateRecordRequest represents record update parameters. AccessCode is
// only consulted when the update changes the diagnosis and the caller's
// role does not hold the unconditional capability.
type UpdateRecordRequest struct {
	Description *string `json:"description"`
	Diagnosis   *string `json:"diagnosis"`
	Treatment   *string `json:"treatment"`
	Medications *string `json:"medications"`
	AccessCode  string  `json:"access_code"`
}
