package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

type LogOptions struct {
	AuthPath model.AuthorizationPath
	Metadata model.JSONMap
}

// Log creates an audit log entry. A failed write is logged but never fails
// the caller's request: the mutation already happened.
func (s *Service) Log(ctx context.Context, userID uuid.UUID, role model.Role, action, entityType string, entityID uuid.UUID, opts *LogOptions) {
	entry := &model.AuditLog{
		ID:         uuid.New(),
		UserID:     userID,
		Role:       role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
	}
	if opts != nil {
		entry.AuthPath = string(opts.AuthPath)
		entry.Metadata = opts.Metadata
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Str("entity_id", entityID.String()).
			Msg("failed to write audit log")
	}
}

// ListByEntity returns the audit trail for one entity.
func (s *Service) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*model.AuditLog, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID)
}
