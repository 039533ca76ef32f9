package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vetdesk/clinic-api/internal/repository"
)

// AuditRetentionWorker purges audit entries past the retention window.
// Clinic audit trails are kept for a bounded period, not forever.
type AuditRetentionWorker struct {
	repo          repository.AuditRepository
	retentionDays int
	interval      time.Duration
}

func NewAuditRetentionWorker(repo repository.AuditRepository, retentionDays int, interval time.Duration) *AuditRetentionWorker {
	return &AuditRetentionWorker{
		repo:          repo,
		retentionDays: retentionDays,
		interval:      interval,
	}
}

func (w *AuditRetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *AuditRetentionWorker) purge(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("audit retention purge failed")
		return
	}
	if rows > 0 {
		log.Info().Int64("rows", rows).Time("cutoff", cutoff).Msg("purged expired audit logs")
	}
}
