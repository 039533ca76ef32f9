package pet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/rbac"
	"github.com/vetdesk/clinic-api/internal/repository"
	"github.com/vetdesk/clinic-api/internal/service/audit"
	apperrors "github.com/vetdesk/clinic-api/pkg/errors"
)

type Service struct {
	pets         repository.PetRepository
	vaccinations repository.VaccinationRepository
	auditor      *audit.Service
}

func NewService(pets repository.PetRepository, vaccinations repository.VaccinationRepository, auditor *audit.Service) *Service {
	return &Service{
		pets:         pets,
		vaccinations: vaccinations,
		auditor:      auditor,
	}
}

func (s *Service) CreatePet(ctx context.Context, actor model.Actor, req *model.CreatePetRequest) (*model.Pet, error) {
	if !rbac.Can(actor.Role, rbac.CapEditProfile) {
		return nil, apperrors.PermissionDenied("create pet profile")
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid owner ID", err)
	}

	pet := &model.Pet{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		OwnerID: ownerID,
		Name:    req.Name,
		Species: req.Species,
		Breed:   req.Breed,
		Sex:     req.Sex,
		Weight:  req.Weight,
		Color:   req.Color,
		Notes:   req.Notes,
	}

	if err := s.pets.Create(ctx, pet); err != nil {
		return nil, fmt.Errorf("failed to create pet: %w", err)
	}

	s.auditor.Log(ctx, actor.UserID, actor.Role, "create", "pet", pet.ID, nil)
	return pet, nil
}

func (s *Service) GetPet(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	pet, err := s.pets.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("pet", err)
	}
	return pet, nil
}

func (s *Service) ListPets(ctx context.Context, p model.Pagination) ([]*model.Pet, error) {
	return s.pets.List(ctx, p)
}

func (s *Service) UpdatePet(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdatePetRequest) (*model.Pet, error) {
	if !rbac.Can(actor.Role, rbac.CapEditProfile) {
		return nil, apperrors.PermissionDenied("edit pet profile")
	}

	pet, err := s.pets.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("pet", err)
	}

	if req.Name != nil {
		pet.Name = *req.Name
	}
	if req.Breed != nil {
		pet.Breed = *req.Breed
	}
	if req.Weight != nil {
		pet.Weight = *req.Weight
	}
	if req.Color != nil {
		pet.Color = *req.Color
	}
	if req.Notes != nil {
		pet.Notes = *req.Notes
	}

	if err := s.pets.Update(ctx, pet); err != nil {
		return nil, fmt.Errorf("failed to update pet: %w", err)
	}

	s.auditor.Log(ctx, actor.UserID, actor.Role, "update", "pet", pet.ID, nil)
	return pet, nil
}

func (s *Service) DeletePet(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !rbac.Can(actor.Role, rbac.CapEditProfile) {
		return apperrors.PermissionDenied("delete pet profile")
	}

	if err := s.pets.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
	}

	s.auditor.Log(ctx, actor.UserID, actor.Role, "delete", "pet", id, nil)
	return nil
}

// GetOwnerContact returns the owner's contact card. Gated by
// can-view-contact-info.
func (s *Service) GetOwnerContact(ctx context.Context, actor model.Actor, petID uuid.UUID) (*model.OwnerContact, error) {
	if !rbac.Can(actor.Role, rbac.CapViewContactInfo) {
		return nil, apperrors.PermissionDenied("view owner contact info")
	}

	contact, err := s.pets.GetOwnerContact(ctx, petID)
	if err != nil {
		return nil, apperrors.NotFound("owner contact", err)
	}
	return contact, nil
}

func (s *Service) AddVaccination(ctx context.Context, actor model.Actor, petID uuid.UUID, req *model.CreateVaccinationRequest) (*model.Vaccination, error) {
	if !rbac.Can(actor.Role, rbac.CapAddVaccination) {
		return nil, apperrors.PermissionDenied("add vaccination")
	}

	if _, err := s.pets.Get(ctx, petID); err != nil {
		return nil, apperrors.NotFound("pet", err)
	}

	v := &model.Vaccination{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		PetID:          petID,
		Vaccine:        req.Vaccine,
		Batch:          req.Batch,
		AdministeredBy: actor.UserID,
		AdministeredAt: time.Now(),
		NextDueAt:      req.NextDueAt,
	}

	if err := s.vaccinations.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to create vaccination: %w", err)
	}

	s.auditor.Log(ctx, actor.UserID, actor.Role, "create", "vaccination", v.ID, nil)
	return v, nil
}

func (s *Service) ListVaccinations(ctx context.Context, petID uuid.UUID) ([]*model.Vaccination, error) {
	return s.vaccinations.ListByPet(ctx, petID)
}
