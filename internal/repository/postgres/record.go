package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/repository"
)

type recordRepository struct {
	BaseRepository
}

func NewMedicalRecordRepository(base BaseRepository) repository.MedicalRecordRepository {
	return &recordRepository{base}
}

func (r *recordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (
			id, pet_id, type, description, diagnosis, treatment,
			medications, created_by, created_at, updated_at
		) VALUES (
			:id, :pet_id, :type, :description, :diagnosis, :treatment,
			:medications, :created_by, :created_at, :updated_at
		)
	`
	if _, err := r.GetDB().NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (r *recordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE id = $1 AND deleted_at IS NULL`

	var record model.MedicalRecord
	if err := r.GetDB().GetContext(ctx, &record, query, id); err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return &record, nil
}

func (r *recordRepository) ListByPet(ctx context.Context, petID uuid.UUID) ([]*model.MedicalRecord, error) {
	query := `
		SELECT * FROM medical_records
		WHERE pet_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	var records []*model.MedicalRecord
	if err := r.GetDB().SelectContext(ctx, &records, query, petID); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

// Update writes the full record in one transaction. Record updates are
// all-or-nothing: the diagnosis never persists separately from the rest of
// the payload.
func (r *recordRepository) Update(ctx context.Context, record *model.MedicalRecord) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE medical_records SET
				description = :description,
				diagnosis = :diagnosis,
				treatment = :treatment,
				medications = :medications,
				updated_at = NOW()
			WHERE id = :id AND deleted_at IS NULL
		`
		result, err := tx.NamedExecContext(ctx, query, record)
		if err != nil {
			return fmt.Errorf("failed to update medical record: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("medical record not found")
		}
		return nil
	})
}
