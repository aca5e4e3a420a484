package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/event"
	"github.com/jwalitptl/hospital-api/pkg/blob"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/security"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

const (
	MsgNotFound         = "Patient not found."
	MsgEmailTaken       = "The email has already been taken."
	MsgPasswordMismatch = "password confirmation does not match"

	blobPrefix = "patient"
)

type PatientService interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest, image *model.FileUpload) (*model.Patient, error)
	ListPatients(ctx context.Context) ([]*model.Patient, error)
	GetPatient(ctx context.Context, id int64) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id int64, req *model.UpdatePatientRequest, image *model.FileUpload) (*model.Patient, error)
	ArchivePatient(ctx context.Context, id int64) error
}

type Service struct {
	repo     repository.PatientRepository
	hasher   security.PasswordHasher
	blobs    blob.Store
	validate validator.Validator
	images   blob.ImageRules
	events   *event.Emitter
}

func NewService(repo repository.PatientRepository, hasher security.PasswordHasher, blobs blob.Store, events *event.Emitter) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		blobs:    blobs,
		validate: validator.Default(),
		images:   blob.ProfileImageRules,
		events:   events,
	}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest, image *model.FileUpload) (*model.Patient, error) {
	req.Normalize()

	ext, errs := s.check(req, req.Password, req.PasswordConfirmation, image)
	if err := s.checkEmail(ctx, errs, req.Email, 0); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, rejected(errs)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	patient := &model.Patient{PasswordHash: hash}
	req.PatientProfile.ApplyTo(patient)
	patient.IsArchived = false

	if image != nil {
		path, err := s.blobs.Save(ctx, blobPrefix, ext, image.Content)
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("failed to store profile image: %w", err))
		}
		patient.ProfileImg = &path
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		s.discardBlob(ctx, patient.ProfileImg)
		return nil, s.writeError("create", err)
	}

	s.events.Emit(ctx, event.PatientCreated, patient)
	return patient, nil
}

func (s *Service) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to list patients: %w", err))
	}
	if patients == nil {
		patients = []*model.Patient{}
	}
	return patients, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	return s.find(ctx, id, repository.ActiveOnly)
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, req *model.UpdatePatientRequest, image *model.FileUpload) (*model.Patient, error) {
	patient, err := s.find(ctx, id, repository.ActiveOnly)
	if err != nil {
		return nil, err
	}

	req.Normalize()

	ext, errs := s.check(req, req.Password, req.PasswordConfirmation, image)
	if err := s.checkEmail(ctx, errs, req.Email, patient.ID); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, rejected(errs)
	}

	req.PatientProfile.ApplyTo(patient)

	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
		}
		patient.PasswordHash = hash
	}

	var stored *string
	if image != nil {
		s.discardBlob(ctx, patient.ProfileImg)

		path, err := s.blobs.Save(ctx, blobPrefix, ext, image.Content)
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("failed to store profile image: %w", err))
		}
		stored = &path
		patient.ProfileImg = stored
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		s.discardBlob(ctx, stored)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(MsgNotFound, err)
		}
		return nil, s.writeError("update", err)
	}

	s.events.Emit(ctx, event.PatientUpdated, patient)
	return patient, nil
}

// ArchivePatient hides the patient from reads. Archived patients may be
// archived again; the stored image is kept.
func (s *Service) ArchivePatient(ctx context.Context, id int64) error {
	patient, err := s.find(ctx, id, repository.IncludeArchived)
	if err != nil {
		return err
	}

	patient.IsArchived = true
	if err := s.repo.Update(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound(MsgNotFound, err)
		}
		return apperrors.Storage(fmt.Errorf("failed to archive patient %d: %w", id, err))
	}

	s.events.Emit(ctx, event.PatientArchived, patient)
	return nil
}

func (s *Service) find(ctx context.Context, id int64, scope repository.Scope) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id, scope)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(MsgNotFound, err)
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to get patient %d: %w", id, err))
	}
	return patient, nil
}

// check runs the request schema, the password confirmation and the image
// rules, returning the image extension and every violation found.
func (s *Service) check(req interface{}, password, confirmation string, image *model.FileUpload) (string, validator.Errors) {
	errs := s.validate.Validate(req)

	if password != "" && password != confirmation {
		errs.Add("password", MsgPasswordMismatch)
	}

	var ext string
	if image != nil {
		var problems []string
		ext, problems = s.images.CheckImage(image.Filename, image.Content)
		for _, p := range problems {
			errs.Add("profile_img", p)
		}
	}
	return ext, errs
}

// checkEmail adds MsgEmailTaken to errs when an otherwise valid email
// belongs to another patient.
func (s *Service) checkEmail(ctx context.Context, errs validator.Errors, email string, excludeID int64) error {
	if errs.Has("email") {
		return nil
	}
	taken, err := s.repo.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("failed to check email: %w", err))
	}
	if taken {
		errs.Add("email", MsgEmailTaken)
	}
	return nil
}

// rejected reports a taken email on its own as a conflict, and any other
// combination of violations as a validation failure.
func rejected(errs validator.Errors) error {
	if len(errs) == 1 && len(errs["email"]) == 1 && errs["email"][0] == MsgEmailTaken {
		return apperrors.Conflict("email", MsgEmailTaken, nil)
	}
	return apperrors.Validation(errs)
}

func (s *Service) writeError(op string, err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.Conflict("email", MsgEmailTaken, err)
	}
	return apperrors.Storage(fmt.Errorf("failed to %s patient: %w", op, err))
}

// discardBlob removes path, logging instead of failing.
func (s *Service) discardBlob(ctx context.Context, path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := s.blobs.Delete(ctx, *path); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("path", *path).Msg("failed to delete profile image")
	}
}
