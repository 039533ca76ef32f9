// Package accesscode issues and redeems the one-time codes that unlock
// diagnosis editing. Codes are bound to the requesting session, delivered
// out of band to the clinic approver, and usable exactly once. The
// requester never sees the code in a response; the approver reads it from
// email and hands it over.
package accesscode

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vetdesk/clinic-api/internal/email"
	"github.com/vetdesk/clinic-api/internal/session"
	apperrors "github.com/vetdesk/clinic-api/pkg/errors"
	"github.com/vetdesk/clinic-api/pkg/metrics"
)

const (
	// codeBytes of randomness, hex-encoded to 8 uppercase characters.
	codeBytes = 4

	// DefaultTTL bounds code lifetime, matching the adjacent
	// password-reset flow's order of magnitude.
	DefaultTTL = 15 * time.Minute
)

// Config holds issuer settings.
type Config struct {
	ApproverEmail string        `mapstructure:"approver_email"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// Issuer creates, delivers and redeems diagnosis access codes.
type Issuer struct {
	store    session.Store
	emailSvc email.Service
	cfg      Config
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewIssuer(store session.Store, emailSvc email.Service, cfg Config, m *metrics.Metrics) *Issuer {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Issuer{
		store:    store,
		emailSvc: emailSvc,
		cfg:      cfg,
		metrics:  m,
		now:      time.Now,
	}
}

// Issue generates a fresh code for the session, replacing any prior live
// code, and emails it to the approver. The code is considered issued once
// stored: a delivery failure is surfaced as NotificationDelivery but does
// not roll the code back, so the requester can ask the approver to check
// again or simply re-request.
func (i *Issuer) Issue(ctx context.Context, sessionID string) error {
	code, err := generateCode()
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to generate access code: %w", err))
	}

	if err := i.store.ReplaceCode(ctx, sessionID, code, i.now()); err != nil {
		return apperrors.Internal(err)
	}

	if i.metrics != nil {
		i.metrics.AccessCodesIssued.Inc()
	}

	if err := i.emailSvc.SendAccessCode(ctx, i.cfg.ApproverEmail, code); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("access code notification failed")
		if i.metrics != nil {
			i.metrics.AccessCodeSendErrors.Inc()
		}
		return apperrors.NotificationDelivery(err)
	}

	log.Info().Str("session_id", sessionID).Msg("access code dispatched to approver")
	return nil
}

// Redeem atomically consumes the session's live code. It returns true iff
// submitted matches case-sensitively, the code is unexpired and it has not
// been consumed before. No partial-match information leaks out.
func (i *Issuer) Redeem(ctx context.Context, sessionID, submitted string) (bool, error) {
	if submitted == "" {
		return false, nil
	}

	ok, err := i.store.Redeem(ctx, sessionID, submitted, i.now(), i.cfg.TTL)
	if err != nil {
		return false, apperrors.Internal(err)
	}

	if i.metrics != nil {
		if ok {
			i.metrics.AccessCodesRedeemed.Inc()
		} else {
			i.metrics.AccessCodesRejected.Inc()
		}
	}
	return ok, nil
}

// TTL exposes the configured code lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.cfg.TTL
}

func generateCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
