package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/repository"
)

type petRepository struct {
	BaseRepository
}

func NewPetRepository(base BaseRepository) repository.PetRepository {
	return &petRepository{base}
}

func (r *petRepository) Create(ctx context.Context, pet *model.Pet) error {
	query := `
		INSERT INTO pets (
			id, owner_id, name, species, breed, sex, date_of_birth,
			weight, color, notes, created_at, updated_at
		) VALUES (
			:id, :owner_id, :name, :species, :breed, :sex, :date_of_birth,
			:weight, :color, :notes, :created_at, :updated_at
		)
	`
	if _, err := r.GetDB().NamedExecContext(ctx, query, pet); err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}
	return nil
}

func (r *petRepository) Get(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	query := `SELECT * FROM pets WHERE id = $1 AND deleted_at IS NULL`

	var pet model.Pet
	if err := r.GetDB().GetContext(ctx, &pet, query, id); err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return &pet, nil
}

func (r *petRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Pet, error) {
	query := `SELECT * FROM pets WHERE owner_id = $1 AND deleted_at IS NULL ORDER BY name`

	var pets []*model.Pet
	if err := r.GetDB().SelectContext(ctx, &pets, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list pets by owner: %w", err)
	}
	return pets, nil
}

func (r *petRepository) List(ctx context.Context, p model.Pagination) ([]*model.Pet, error) {
	if p.PageSize <= 0 {
		p.PageSize = 50
	}
	if p.Page <= 0 {
		p.Page = 1
	}

	query := `
		SELECT * FROM pets
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var pets []*model.Pet
	if err := r.GetDB().SelectContext(ctx, &pets, query, p.PageSize, (p.Page-1)*p.PageSize); err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	return pets, nil
}

func (r *petRepository) Update(ctx context.Context, pet *model.Pet) error {
	query := `
		UPDATE pets SET
			name = :name,
			breed = :breed,
			weight = :weight,
			color = :color,
			notes = :notes,
			updated_at = NOW()
		WHERE id = :id AND deleted_at IS NULL
	`
	result, err := r.GetDB().NamedExecContext(ctx, query, pet)
	if err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("pet not found")
	}
	return nil
}

func (r *petRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE pets SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	if _, err := r.GetDB().ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
	}
	return nil
}

func (r *petRepository) GetOwnerContact(ctx context.Context, petID uuid.UUID) (*model.OwnerContact, error) {
	query := `
		SELECT u.id AS owner_id, u.name, u.email, u.phone, '' AS address
		FROM pets p
		JOIN users u ON u.id = p.owner_id
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`

	var contact model.OwnerContact
	if err := r.GetDB().GetContext(ctx, &contact, query, petID); err != nil {
		return nil, fmt.Errorf("failed to get owner contact: %w", err)
	}
	return &contact, nil
}
