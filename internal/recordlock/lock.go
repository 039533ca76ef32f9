// Package recordlock gates the diagnosis field of a medical record behind
// a per-editing-session lock. The lock is ephemeral: it lives in the
// session store and starts Locked for any session whose role lacks the
// unconditional-edit capability. Doctors never unlock; they bypass the
// lock entirely at the guard.
package recordlock

import (
	"context"
	"fmt"

	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/rbac"
	"github.com/vetdesk/clinic-api/internal/session"
)

// State of the diagnosis lock for one editing session.
type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// Lock reads and transitions the per-session diagnosis lock.
type Lock struct {
	store session.Store
}

func New(store session.Store) *Lock {
	return &Lock{store: store}
}

// State returns the lock state for the session. Sessions with no stored
// state are Locked.
func (l *Lock) State(ctx context.Context, sessionID string) (State, error) {
	st, err := l.store.Get(ctx, sessionID)
	if err != nil {
		return Locked, fmt.Errorf("failed to read lock state: %w", err)
	}
	if st.DiagnosisUnlocked {
		return Unlocked, nil
	}
	return Locked, nil
}

// Unlock transitions Locked -> Unlocked. Callers only invoke this after a
// successful access-code redemption.
func (l *Lock) Unlock(ctx context.Context, sessionID string) error {
	return l.store.SetUnlocked(ctx, sessionID, true)
}

// Relock transitions Unlocked -> Locked. Each unlock authorizes exactly one
// diagnosis write, so the record-update path relocks after committing.
func (l *Lock) Relock(ctx context.Context, sessionID string) error {
	return l.store.SetUnlocked(ctx, sessionID, false)
}

// IsWritable reports whether the diagnosis field can be written: either the
// role carries the unconditional capability, or the session holds an
// unlock.
func IsWritable(role model.Role, state State) bool {
	if rbac.Can(role, rbac.CapAlwaysEditDiagnosis) {
		return true
	}
	return state == Unlocked
}
