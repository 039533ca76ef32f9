package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is a persisted trail entry. Diagnosis writes always log the
// acting role and the authorization path so sensitive edits stay
// attributable after the editing session is gone.
type AuditLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Role       Role      `json:"role" db:"role"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id" db:"entity_id"`
	AuthPath   string    `json:"auth_path,omitempty" db:"auth_path"`
	Metadata   JSONMap   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
