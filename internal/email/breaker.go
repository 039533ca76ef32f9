package email

import (
	"context"
	"time"

	"github.com/vetdesk/clinic-api/pkg/circuitbreaker"
)

type breakerService struct {
	inner   Service
	breaker *circuitbreaker.CircuitBreaker
}

// WithBreaker wraps a Service so a misbehaving mail server fails fast
// instead of stalling every request that needs a notification.
func WithBreaker(inner Service) Service {
	return &breakerService{
		inner: inner,
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "smtp",
			MaxFailures: 5,
			Timeout:     time.Minute,
		}),
	}
}

func (s *breakerService) SendAccessCode(ctx context.Context, to string, code string) error {
	return s.breaker.Execute(func() error {
		return s.inner.SendAccessCode(ctx, to, code)
	})
}

func (s *breakerService) SendPasswordReset(ctx context.Context, to string, token string) error {
	return s.breaker.Execute(func() error {
		return s.inner.SendPasswordReset(ctx, to, token)
	})
}

func (s *breakerService) SendCustom(ctx context.Context, to string, subject string, body string) error {
	return s.breaker.Execute(func() error {
		return s.inner.SendCustom(ctx, to, subject, body)
	})
}
