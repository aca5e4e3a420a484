package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/event"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

const (
	MsgNotFound        = "Payment record not found or archived."
	MsgArchiveNotFound = "Payment record not found."

	MsgInvalidPatient     = "The selected patient id is invalid."
	MsgInvalidAppointment = "The selected appointment id is invalid."
)

type PaymentService interface {
	CreatePayment(ctx context.Context, req *model.CreatePaymentRequest) (*model.Payment, error)
	ListPayments(ctx context.Context) ([]*model.PaymentDetails, error)
	GetPayment(ctx context.Context, id int64) (*model.PaymentDetails, error)
	UpdatePayment(ctx context.Context, id int64, req *model.UpdatePaymentRequest) (*model.Payment, error)
	ArchivePayment(ctx context.Context, id int64) error
}

type Service struct {
	payments     repository.PaymentRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	validate     validator.Validator
	events       *event.Emitter
	// refs remembers ids known to exist. Rows are never removed, so
	// positive answers stay valid; negative answers are not cached.
	refs *cache.Cache
}

// NewService builds the payment service. A nil refs cache gets a default
// one with a ten minute expiry.
func NewService(
	payments repository.PaymentRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	events *event.Emitter,
	refs *cache.Cache,
) *Service {
	if refs == nil {
		refs = cache.New(10*time.Minute, 30*time.Minute)
	}
	return &Service{
		payments:     payments,
		patients:     patients,
		appointments: appointments,
		validate:     validator.Default(),
		events:       events,
		refs:         refs,
	}
}

func (s *Service) CreatePayment(ctx context.Context, req *model.CreatePaymentRequest) (*model.Payment, error) {
	req.Normalize()

	date, errs := s.check(req, req.TransactionDate)

	if req.PatientID != nil && !errs.Has("patient_id") {
		ok, err := s.referenceExists(ctx, "patient", *req.PatientID, s.patients.Exists)
		if err != nil {
			return nil, err
		}
		if !ok {
			errs.Add("patient_id", MsgInvalidPatient)
		}
	}
	if req.AppointmentID != nil {
		ok, err := s.referenceExists(ctx, "appointment", *req.AppointmentID, s.appointments.Exists)
		if err != nil {
			return nil, err
		}
		if !ok {
			errs.Add("appointment_id", MsgInvalidAppointment)
		}
	}
	if len(errs) > 0 {
		return nil, apperrors.Validation(errs)
	}

	payment := &model.Payment{
		PatientID:     *req.PatientID,
		AppointmentID: req.AppointmentID,
	}
	req.PaymentTerms.ApplyTo(payment, date)
	payment.IsArchived = false

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to create payment: %w", err))
	}

	s.events.Emit(ctx, event.PaymentCreated, payment)
	return payment, nil
}

func (s *Service) ListPayments(ctx context.Context) ([]*model.PaymentDetails, error) {
	payments, err := s.payments.List(ctx)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to list payments: %w", err))
	}
	return s.enrich(ctx, payments)
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*model.PaymentDetails, error) {
	payment, err := s.find(ctx, id, repository.ActiveOnly, MsgNotFound)
	if err != nil {
		return nil, err
	}

	details, err := s.enrich(ctx, []*model.Payment{payment})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// UpdatePayment replaces the mutable terms of an active payment. The patient
// and appointment links are kept.
func (s *Service) UpdatePayment(ctx context.Context, id int64, req *model.UpdatePaymentRequest) (*model.Payment, error) {
	payment, err := s.find(ctx, id, repository.ActiveOnly, MsgNotFound)
	if err != nil {
		return nil, err
	}

	req.Normalize()

	date, errs := s.check(req, req.TransactionDate)
	if len(errs) > 0 {
		return nil, apperrors.Validation(errs)
	}

	req.PaymentTerms.ApplyTo(payment, date)

	if err := s.payments.Update(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(MsgNotFound, err)
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to update payment %d: %w", id, err))
	}

	s.events.Emit(ctx, event.PaymentUpdated, payment)
	return payment, nil
}

func (s *Service) ArchivePayment(ctx context.Context, id int64) error {
	payment, err := s.find(ctx, id, repository.IncludeArchived, MsgArchiveNotFound)
	if err != nil {
		return err
	}

	payment.IsArchived = true
	if err := s.payments.Update(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound(MsgArchiveNotFound, err)
		}
		return apperrors.Storage(fmt.Errorf("failed to archive payment %d: %w", id, err))
	}

	s.events.Emit(ctx, event.PaymentArchived, payment)
	return nil
}

func (s *Service) find(ctx context.Context, id int64, scope repository.Scope, notFound string) (*model.Payment, error) {
	payment, err := s.payments.Get(ctx, id, scope)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(notFound, err)
		}
		return nil, apperrors.Storage(fmt.Errorf("failed to get payment %d: %w", id, err))
	}
	return payment, nil
}

// check validates req and parses the transaction date once the schema passes.
func (s *Service) check(req interface{}, transactionDate string) (time.Time, validator.Errors) {
	errs := s.validate.Validate(req)
	if errs.Has("transaction_date") {
		return time.Time{}, errs
	}

	date, err := validator.ParseDate(transactionDate)
	if err != nil {
		errs.Add("transaction_date", "transaction_date must be a valid date")
	}
	return date, errs
}

func (s *Service) referenceExists(ctx context.Context, kind string, id int64, exists func(context.Context, int64) (bool, error)) (bool, error) {
	key := fmt.Sprintf("%s:%d", kind, id)
	if _, ok := s.refs.Get(key); ok {
		return true, nil
	}

	ok, err := exists(ctx, id)
	if err != nil {
		return false, apperrors.Storage(fmt.Errorf("failed to check %s %d: %w", kind, id, err))
	}
	if ok {
		s.refs.SetDefault(key, struct{}{})
	}
	return ok, nil
}

// enrich attaches patients and appointments with one batch lookup each.
func (s *Service) enrich(ctx context.Context, payments []*model.Payment) ([]*model.PaymentDetails, error) {
	details := make([]*model.PaymentDetails, 0, len(payments))
	if len(payments) == 0 {
		return details, nil
	}

	patientIDs := make([]int64, 0, len(payments))
	var appointmentIDs []int64
	for _, p := range payments {
		patientIDs = append(patientIDs, p.PatientID)
		if p.AppointmentID != nil {
			appointmentIDs = append(appointmentIDs, *p.AppointmentID)
		}
	}

	patients, err := s.patients.GetMany(ctx, patientIDs)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to load payment patients: %w", err))
	}

	appointments := map[int64]*model.Appointment{}
	if len(appointmentIDs) > 0 {
		appointments, err = s.appointments.GetMany(ctx, appointmentIDs)
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("failed to load payment appointments: %w", err))
		}
	}

	for _, p := range payments {
		d := &model.PaymentDetails{Payment: p, Patient: patients[p.PatientID]}
		if p.AppointmentID != nil {
			d.Appointment = appointments[*p.AppointmentID]
		}
		details = append(details, d)
	}
	return details, nil
}
