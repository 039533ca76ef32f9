package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/repository"
)

type vaccinationRepository struct {
	BaseRepository
}

func NewVaccinationRepository(base BaseRepository) repository.VaccinationRepository {
	return &vaccinationRepository{base}
}

func (r *vaccinationRepository) Create(ctx context.Context, v *model.Vaccination) error {
	query := `
		INSERT INTO vaccinations (
			id, pet_id, vaccine, batch, administered_by, administered_at,
			next_due_at, created_at, updated_at
		) VALUES (
			:id, :pet_id, :vaccine, :batch, :administered_by, :administered_at,
			:next_due_at, :created_at, :updated_at
		)
	`
	if _, err := r.GetDB().NamedExecContext(ctx, query, v); err != nil {
		return fmt.Errorf("failed to create vaccination: %w", err)
	}
	return nil
}

func (r *vaccinationRepository) ListByPet(ctx context.Context, petID uuid.UUID) ([]*model.Vaccination, error) {
	query := `
		SELECT * FROM vaccinations
		WHERE pet_id = $1 AND deleted_at IS NULL
		ORDER BY administered_at DESC
	`

	var out []*model.Vaccination
	if err := r.GetDB().SelectContext(ctx, &out, query, petID); err != nil {
		return nil, fmt.Errorf("failed to list vaccinations: %w", err)
	}
	return out, nil
}
