package model

import (
	"github.com/google/uuid"
)

// Actor is the authenticated caller of a use case: who they are, what role
// their token carries, and which editing session they are in.
type Actor struct {
	UserID    uuid.UUID
	Role      Role
	SessionID string
}
