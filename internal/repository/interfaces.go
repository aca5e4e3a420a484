package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/hospital-api/internal/model"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Scope selects which rows a lookup may return.
type Scope int

const (
	// ActiveOnly hides archived rows.
	ActiveOnly Scope = iota
	// IncludeArchived returns rows regardless of their archive flag.
	IncludeArchived
)

// All repository interfaces in one file
type (
	// PatientRepository handles patient persistence
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64, scope Scope) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		// List returns active patients, newest first.
		List(ctx context.Context) ([]*model.Patient, error)
		Exists(ctx context.Context, id int64) (bool, error)
		EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
		GetMany(ctx context.Context, ids []int64) (map[int64]*model.Patient, error)
		ListImagePaths(ctx context.Context) ([]string, error)
	}

	// PaymentRepository handles payment persistence
	PaymentRepository interface {
		Create(ctx context.Context, payment *model.Payment) error
		Get(ctx context.Context, id int64, scope Scope) (*model.Payment, error)
		Update(ctx context.Context, payment *model.Payment) error
		// List returns active payments, latest transaction first.
		List(ctx context.Context) ([]*model.Payment, error)
	}

	// AppointmentRepository is read only
	AppointmentRepository interface {
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		Exists(ctx context.Context, id int64) (bool, error)
		GetMany(ctx context.Context, ids []int64) (map[int64]*model.Appointment, error)
	}

	// Pinger reports store reachability
	Pinger interface {
		PingContext(ctx context.Context) error
	}
)

// Stores bundles the repositories of one backend.
type Stores struct {
	Patients     PatientRepository
	Payments     PaymentRepository
	Appointments AppointmentRepository
	Pinger       Pinger
	Close        func() error
}
