package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

const uniqueViolation = "23505"

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB, m *metrics.Metrics) BaseRepository {
	return BaseRepository{db: db, metrics: m}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// observe records the outcome of one query and translates driver errors.
func (r *BaseRepository) observe(op string, start time.Time, err error) error {
	r.metrics.ObserveDatabase(op, start, err)
	return translateError(op, err)
}

func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w (%s)", op, repository.ErrDuplicate, pqErr.Constraint)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// NewStores wires the sqlx repositories over db.
func NewStores(db *sqlx.DB, m *metrics.Metrics) *repository.Stores {
	base := NewBaseRepository(db, m)
	return &repository.Stores{
		Patients:     NewPatientRepository(base),
		Payments:     NewPaymentRepository(base),
		Appointments: NewAppointmentRepository(base),
		Pinger:       db,
		Close:        db.Close,
	}
}
