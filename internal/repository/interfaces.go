package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/clinic-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type PetRepository interface {
	Create(ctx context.Context, pet *model.Pet) error
	Get(ctx context.Context, id uuid.UUID) (*model.Pet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Pet, error)
	List(ctx context.Context, p model.Pagination) ([]*model.Pet, error)
	Update(ctx context.Context, pet *model.Pet) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetOwnerContact(ctx context.Context, petID uuid.UUID) (*model.OwnerContact, error)
}

type MedicalRecordRepository interface {
	Create(ctx context.Context, record *model.MedicalRecord) error
	Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
	ListByPet(ctx context.Context, petID uuid.UUID) ([]*model.MedicalRecord, error)
	Update(ctx context.Context, record *model.MedicalRecord) error
}

type VaccinationRepository interface {
	Create(ctx context.Context, v *model.Vaccination) error
	ListByPet(ctx context.Context, petID uuid.UUID) ([]*model.Vaccination, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*model.AuditLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
