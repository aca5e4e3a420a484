package orm

import (
	"context"

	"gorm.io/gorm"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return translateError("patient_create", r.db.WithContext(ctx).Create(patient).Error)
}

func (r *patientRepository) Get(ctx context.Context, id int64, scope repository.Scope) (*model.Patient, error) {
	q := r.db.WithContext(ctx)
	if scope == repository.ActiveOnly {
		q = q.Where("is_archived = ?", false)
	}

	var patient model.Patient
	if err := q.First(&patient, id).Error; err != nil {
		return nil, translateError("patient_get", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	res := r.db.WithContext(ctx).Model(patient).Select("*").Omit("created_at").Updates(patient)
	if res.Error != nil {
		return translateError("patient_update", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	patients := make([]*model.Patient, 0)
	err := r.db.WithContext(ctx).
		Where("is_archived = ?", false).
		Order("created_at DESC").Order("id DESC").
		Find(&patients).Error
	if err != nil {
		return nil, translateError("patient_list", err)
	}
	return patients, nil
}

func (r *patientRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Patient{}).Where("id = ?", id).Count(&count).Error
	return count > 0, translateError("patient_exists", err)
}

func (r *patientRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Patient{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, translateError("patient_email_taken", err)
}

func (r *patientRepository) GetMany(ctx context.Context, ids []int64) (map[int64]*model.Patient, error) {
	result := make(map[int64]*model.Patient, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var patients []*model.Patient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&patients).Error; err != nil {
		return nil, translateError("patient_get_many", err)
	}
	for _, p := range patients {
		result[p.ID] = p
	}
	return result, nil
}

func (r *patientRepository) ListImagePaths(ctx context.Context) ([]string, error) {
	paths := make([]string, 0)
	err := r.db.WithContext(ctx).Model(&model.Patient{}).
		Where("profile_img IS NOT NULL AND profile_img <> ''").
		Pluck("profile_img", &paths).Error
	if err != nil {
		return nil, translateError("patient_image_paths", err)
	}
	return paths, nil
}
