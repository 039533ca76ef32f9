package pet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/service/audit"
	apperrors "github.com/vetdesk/clinic-api/pkg/errors"
)

type fakePetRepo struct {
	byID     map[uuid.UUID]*model.Pet
	contacts map[uuid.UUID]*model.OwnerContact
}

func newFakePetRepo() *fakePetRepo {
	return &fakePetRepo{
		byID:     make(map[uuid.UUID]*model.Pet),
		contacts: make(map[uuid.UUID]*model.OwnerContact),
	}
}

func (r *fakePetRepo) Create(_ context.Context, pet *model.Pet) error {
	clone := *pet
	r.byID[pet.ID] = &clone
	return nil
}

func (r *fakePetRepo) Get(_ context.Context, id uuid.UUID) (*model.Pet, error) {
	pet, ok := r.byID[id]
	if !ok {
		return nil, errors.New("not found")
	}
	clone := *pet
	return &clone, nil
}

func (r *fakePetRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*model.Pet, error) {
	var out []*model.Pet
	for _, pet := range r.byID {
		if pet.OwnerID == ownerID {
			out = append(out, pet)
		}
	}
	return out, nil
}

func (r *fakePetRepo) List(_ context.Context, _ model.Pagination) ([]*model.Pet, error) {
	var out []*model.Pet
	for _, pet := range r.byID {
		out = append(out, pet)
	}
	return out, nil
}

func (r *fakePetRepo) Update(_ context.Context, pet *model.Pet) error {
	if _, ok := r.byID[pet.ID]; !ok {
		return errors.New("not found")
	}
	clone := *pet
	r.byID[pet.ID] = &clone
	return nil
}

func (r *fakePetRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *fakePetRepo) GetOwnerContact(_ context.Context, petID uuid.UUID) (*model.OwnerContact, error) {
	contact, ok := r.contacts[petID]
	if !ok {
		return nil, errors.New("not found")
	}
	return contact, nil
}

type fakeVaccinationRepo struct {
	created []*model.Vaccination
}

func (r *fakeVaccinationRepo) Create(_ context.Context, v *model.Vaccination) error {
	r.created = append(r.created, v)
	return nil
}

func (r *fakeVaccinationRepo) ListByPet(_ context.Context, petID uuid.UUID) ([]*model.Vaccination, error) {
	var out []*model.Vaccination
	for _, v := range r.created {
		if v.PetID == petID {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) ListByEntity(_ context.Context, _ string, _ uuid.UUID) ([]*model.AuditLog, error) {
	return r.entries, nil
}

func (r *fakeAuditRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fixture struct {
	svc          *Service
	pets         *fakePetRepo
	vaccinations *fakeVaccinationRepo
}

func newFixture() *fixture {
	pets := newFakePetRepo()
	vaccinations := &fakeVaccinationRepo{}
	svc := NewService(pets, vaccinations, audit.NewService(&fakeAuditRepo{}))
	return &fixture{svc: svc, pets: pets, vaccinations: vaccinations}
}

func actorWith(role model.Role) model.Actor {
	return model.Actor{UserID: uuid.New(), Role: role, SessionID: uuid.New().String()}
}

func (f *fixture) seedPet(t *testing.T) *model.Pet {
	t.Helper()
	pet, err := f.svc.CreatePet(context.Background(), actorWith(model.RoleDoctor), &model.CreatePetRequest{
		OwnerID: uuid.New().String(),
		Name:    "Mika",
		Species: "cat",
	})
	require.NoError(t, err)
	return pet
}

func TestFrontDeskCannotAddVaccination(t *testing.T) {
	f := newFixture()
	pet := f.seedPet(t)

	_, err := f.svc.AddVaccination(context.Background(), actorWith(model.RoleFrontDesk), pet.ID, &model.CreateVaccinationRequest{
		Vaccine: "rabies",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))
	assert.Empty(t, f.vaccinations.created)
}

func TestClinicianAddsVaccination(t *testing.T) {
	f := newFixture()
	pet := f.seedPet(t)
	actor := actorWith(model.RoleClinician)

	v, err := f.svc.AddVaccination(context.Background(), actor, pet.ID, &model.CreateVaccinationRequest{
		Vaccine: "rabies",
		Batch:   "B-2041",
	})
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, v.AdministeredBy)

	listed, err := f.svc.ListVaccinations(context.Background(), pet.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestPetOwnerCannotViewOwnerContact(t *testing.T) {
	f := newFixture()
	pet := f.seedPet(t)
	f.pets.contacts[pet.ID] = &model.OwnerContact{OwnerID: pet.OwnerID, Name: "Sam Doe"}

	_, err := f.svc.GetOwnerContact(context.Background(), actorWith(model.RolePetOwner), pet.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))
}

func TestFrontDeskViewsOwnerContact(t *testing.T) {
	f := newFixture()
	pet := f.seedPet(t)
	f.pets.contacts[pet.ID] = &model.OwnerContact{OwnerID: pet.OwnerID, Name: "Sam Doe"}

	contact, err := f.svc.GetOwnerContact(context.Background(), actorWith(model.RoleFrontDesk), pet.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam Doe", contact.Name)
}

func TestPetOwnerCannotEditProfile(t *testing.T) {
	f := newFixture()
	pet := f.seedPet(t)

	name := "Renamed"
	_, err := f.svc.UpdatePet(context.Background(), actorWith(model.RolePetOwner), pet.ID, &model.UpdatePetRequest{Name: &name})
	assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))

	stored, err := f.pets.Get(context.Background(), pet.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mika", stored.Name)
}

func TestFrontDeskEditsProfile(t *testing.T) {
	f := newFixture()
	pet := f.seedPet(t)

	notes := "prefers morning appointments"
	updated, err := f.svc.UpdatePet(context.Background(), actorWith(model.RoleFrontDesk), pet.ID, &model.UpdatePetRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
}

func TestUnknownRoleDeniedEverywhere(t *testing.T) {
	f := newFixture()
	pet := f.seedPet(t)
	actor := actorWith(model.Role("intruder"))

	_, err := f.svc.AddVaccination(context.Background(), actor, pet.ID, &model.CreateVaccinationRequest{Vaccine: "rabies"})
	assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))

	_, err = f.svc.GetOwnerContact(context.Background(), actor, pet.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))

	assert.Error(t, f.svc.DeletePet(context.Background(), actor, pet.ID))
}
