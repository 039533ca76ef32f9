// Package session stores per-editing-session state: the live diagnosis
// access code and the diagnosis lock flag. State is ephemeral and keyed by
// the session identifier from the caller's token; nothing survives the
// session.
package session

import (
	"context"
	"time"
)

// State is the stored record for one editing session.
type State struct {
	Code              string    `json:"code"`
	CodeIssuedAt      time.Time `json:"code_issued_at"`
	CodeConsumed      bool      `json:"code_consumed"`
	DiagnosisUnlocked bool      `json:"diagnosis_unlocked"`
}

// HasLiveCode reports whether an unconsumed, unexpired code exists.
func (s State) HasLiveCode(now time.Time, ttl time.Duration) bool {
	return s.Code != "" && !s.CodeConsumed && now.Sub(s.CodeIssuedAt) <= ttl
}

// Store holds edit-session state. Redeem must be a single atomic
// check-and-set: two concurrent redeems of the same code must never both
// succeed.
type Store interface {
	// Get returns the session state, or a zero State for an unknown session.
	Get(ctx context.Context, sessionID string) (State, error)

	// ReplaceCode installs a fresh code, discarding any prior live code for
	// the session. At most one code is ever outstanding per session.
	ReplaceCode(ctx context.Context, sessionID, code string, issuedAt time.Time) error

	// Redeem consumes the live code iff submitted matches it
	// case-sensitively, it is unconsumed, and it is within ttl of issuance.
	Redeem(ctx context.Context, sessionID, submitted string, now time.Time, ttl time.Duration) (bool, error)

	// SetUnlocked flips the diagnosis lock flag for the session.
	SetUnlocked(ctx context.Context, sessionID string, unlocked bool) error

	// End drops all state for the session. A later Get sees a zero State,
	// which means Locked and no live code.
	End(ctx context.Context, sessionID string) error
}
