package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

const appointmentColumns = `id, patient_id, appointment_date, status, reason, is_archived, created_at, updated_at`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: base}
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	start := time.Now()
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	if err := r.observe("appointment_get", start, err); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM appointments WHERE id = $1)`, id)
	return exists, r.observe("appointment_exists", start, err)
}

func (r *appointmentRepository) GetMany(ctx context.Context, ids []int64) (map[int64]*model.Appointment, error) {
	result := make(map[int64]*model.Appointment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	start := time.Now()
	query, args, err := sqlx.In(`SELECT `+appointmentColumns+` FROM appointments WHERE id IN (?)`, ids)
	if err != nil {
		return nil, r.observe("appointment_get_many", start, err)
	}

	var appointments []*model.Appointment
	err = r.db.SelectContext(ctx, &appointments, r.db.Rebind(query), args...)
	if err := r.observe("appointment_get_many", start, err); err != nil {
		return nil, err
	}
	for _, a := range appointments {
		result[a.ID] = a
	}
	return result, nil
}
