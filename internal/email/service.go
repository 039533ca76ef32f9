package email

import (
	"context"
)

// Service is the outbound notification channel. Delivery failures are
// reported to the caller; the caller decides whether they are fatal.
type Service interface {
	SendAccessCode(ctx context.Context, to string, code string) error
	SendPasswordReset(ctx context.Context, to string, token string) error
	SendCustom(ctx context.Context, to string, subject string, body string) error
}
