// Package record implements medical record use cases, including the guard
// that decides whether a diagnosis write is authorized. The guard composes
// the permission table, the per-session diagnosis lock and the access-code
// issuer; it is the only path to a diagnosis mutation.
package record

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/clinic-api/internal/accesscode"
	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/rbac"
	"github.com/vetdesk/clinic-api/internal/recordlock"
	"github.com/vetdesk/clinic-api/internal/repository"
	"github.com/vetdesk/clinic-api/internal/service/audit"
	apperrors "github.com/vetdesk/clinic-api/pkg/errors"
	"github.com/vetdesk/clinic-api/pkg/metrics"
)

type Service struct {
	records repository.MedicalRecordRepository
	issuer  *accesscode.Issuer
	lock    *recordlock.Lock
	auditor *audit.Service
	metrics *metrics.Metrics
}

func NewService(records repository.MedicalRecordRepository, issuer *accesscode.Issuer,
	lock *recordlock.Lock, auditor *audit.Service, m *metrics.Metrics) *Service {
	return &Service{
		records: records,
		issuer:  issuer,
		lock:    lock,
		auditor: auditor,
		metrics: m,
	}
}

func (s *Service) CreateRecord(ctx context.Context, actor model.Actor, petID uuid.UUID, req *model.CreateRecordRequest) (*model.MedicalRecord, error) {
	if !rbac.Can(actor.Role, rbac.CapAddRecord) {
		return nil, apperrors.PermissionDenied("add medical record")
	}

	record := &model.MedicalRecord{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		PetID:       petID,
		Type:        req.Type,
		Description: req.Description,
		Diagnosis:   req.Diagnosis,
		Treatment:   req.Treatment,
		Medications: req.Medications,
		CreatedBy:   actor.UserID,
	}

	if err := s.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	s.auditor.Log(ctx, actor.UserID, actor.Role, "create", "medical_record", record.ID, nil)
	return record, nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("medical record", err)
	}
	return record, nil
}

func (s *Service) ListRecords(ctx context.Context, petID uuid.UUID) ([]*model.MedicalRecord, error) {
	return s.records.ListByPet(ctx, petID)
}

// UpdateRecord applies a record update all-or-nothing. If the payload
// changes the diagnosis, the whole update stands or falls with the
// diagnosis authorization: a rejected diagnosis write rejects every field
// in the request.
func (s *Service) UpdateRecord(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateRecordRequest) (*model.MedicalRecord, error) {
	if !rbac.Can(actor.Role, rbac.CapUpdateRecord) {
		return nil, apperrors.PermissionDenied("update medical record")
	}

	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("medical record", err)
	}

	diagnosisChanged := req.Diagnosis != nil && *req.Diagnosis != record.Diagnosis

	var path model.AuthorizationPath
	if diagnosisChanged {
		path, err = s.AuthorizeDiagnosisWrite(ctx, actor, req.AccessCode)
		if err != nil {
			if s.metrics != nil {
				s.metrics.DiagnosisDenials.Inc()
			}
			return nil, err
		}
		record.Diagnosis = *req.Diagnosis
	}

	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.Treatment != nil {
		record.Treatment = *req.Treatment
	}
	if req.Medications != nil {
		record.Medications = *req.Medications
	}

	if err := s.records.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	if diagnosisChanged {
		// Each unlock authorizes exactly one write; relock after commit.
		if path == model.AuthPathCodeGated {
			if err := s.lock.Relock(ctx, actor.SessionID); err != nil {
				return nil, fmt.Errorf("failed to relock diagnosis: %w", err)
			}
		}
		if s.metrics != nil {
			s.metrics.DiagnosisWrites.WithLabelValues(string(path)).Inc()
		}
		s.auditor.Log(ctx, actor.UserID, actor.Role, "update_diagnosis", "medical_record", record.ID, &audit.LogOptions{
			AuthPath: path,
		})
	}

	s.auditor.Log(ctx, actor.UserID, actor.Role, "update", "medical_record", record.ID, nil)
	return record, nil
}

// AuthorizeDiagnosisWrite decides whether the actor may write the diagnosis
// field right now:
//
//  1. Roles holding always-edit-diagnosis are authorized outright; neither
//     the lock nor any code is consulted.
//  2. A session already holding an unlock is authorized.
//  3. Otherwise a submitted code is redeemed; success unlocks and
//     authorizes this one write.
//  4. Anything else is rejected.
func (s *Service) AuthorizeDiagnosisWrite(ctx context.Context, actor model.Actor, submittedCode string) (model.AuthorizationPath, error) {
	if rbac.Can(actor.Role, rbac.CapAlwaysEditDiagnosis) {
		return model.AuthPathUnconditional, nil
	}

	state, err := s.lock.State(ctx, actor.SessionID)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	if state == recordlock.Unlocked {
		return model.AuthPathCodeGated, nil
	}

	if submittedCode != "" {
		ok, err := s.issuer.Redeem(ctx, actor.SessionID, submittedCode)
		if err != nil {
			return "", err
		}
		if ok {
			if err := s.lock.Unlock(ctx, actor.SessionID); err != nil {
				return "", apperrors.Internal(err)
			}
			return model.AuthPathCodeGated, nil
		}
		return "", apperrors.InvalidAccessCode()
	}

	return "", apperrors.DiagnosisLocked()
}

// RequestDiagnosisAccessCode issues a fresh code for the actor's session
// and dispatches it to the clinic approver. Doctors have no use for a
// code, so the request is refused rather than emailing one around.
func (s *Service) RequestDiagnosisAccessCode(ctx context.Context, actor model.Actor) error {
	if !rbac.Can(actor.Role, rbac.CapUpdateRecord) {
		return apperrors.PermissionDenied("request diagnosis access code")
	}
	if rbac.Can(actor.Role, rbac.CapAlwaysEditDiagnosis) {
		return apperrors.BadRequest("role does not require an access code", nil)
	}

	err := s.issuer.Issue(ctx, actor.SessionID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotificationDelivery) {
		return err
	}

	s.auditor.Log(ctx, actor.UserID, actor.Role, "request_access_code", "diagnosis_lock", actor.UserID, nil)
	return err
}

// RelockDiagnosis is the explicit re-lock: the client abandons an unlock
// without writing.
func (s *Service) RelockDiagnosis(ctx context.Context, actor model.Actor) error {
	return s.lock.Relock(ctx, actor.SessionID)
}

// AuditTrail returns the change history for a record, including the
// authorization path of every diagnosis write.
func (s *Service) AuditTrail(ctx context.Context, actor model.Actor, id uuid.UUID) ([]*model.AuditLog, error) {
	if !rbac.Can(actor.Role, rbac.CapUpdateRecord) {
		return nil, apperrors.PermissionDenied("view record audit trail")
	}
	return s.auditor.ListByEntity(ctx, "medical_record", id)
}
