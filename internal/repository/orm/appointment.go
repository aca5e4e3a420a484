package orm

import (
	"context"

	"gorm.io/gorm"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.db.WithContext(ctx).First(&appointment, id).Error; err != nil {
		return nil, translateError("appointment_get", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Appointment{}).Where("id = ?", id).Count(&count).Error
	return count > 0, translateError("appointment_exists", err)
}

func (r *appointmentRepository) GetMany(ctx context.Context, ids []int64) (map[int64]*model.Appointment, error) {
	result := make(map[int64]*model.Appointment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var appointments []*model.Appointment
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&appointments).Error; err != nil {
		return nil, translateError("appointment_get_many", err)
	}
	for _, a := range appointments {
		result[a.ID] = a
	}
	return result, nil
}
