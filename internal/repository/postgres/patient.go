package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

const patientColumns = `id, full_name, age, gender, email, phone_number, address, password,
	profile_img, is_archived, created_at, updated_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{BaseRepository: base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	start := time.Now()
	query := `
		INSERT INTO patients (full_name, age, gender, email, phone_number, address, password,
			profile_img, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		patient.FullName,
		patient.Age,
		patient.Gender,
		patient.Email,
		patient.PhoneNumber,
		patient.Address,
		patient.PasswordHash,
		patient.ProfileImg,
		patient.IsArchived,
	).Scan(&patient.ID, &patient.CreatedAt, &patient.UpdatedAt)
	return r.observe("patient_create", start, err)
}

func (r *patientRepository) Get(ctx context.Context, id int64, scope repository.Scope) (*model.Patient, error) {
	start := time.Now()
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	if scope == repository.ActiveOnly {
		query += ` AND is_archived = false`
	}

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err := r.observe("patient_get", start, err); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	start := time.Now()
	query := `
		UPDATE patients
		SET full_name = $1, age = $2, gender = $3, email = $4, phone_number = $5, address = $6,
			password = $7, profile_img = $8, is_archived = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		patient.FullName,
		patient.Age,
		patient.Gender,
		patient.Email,
		patient.PhoneNumber,
		patient.Address,
		patient.PasswordHash,
		patient.ProfileImg,
		patient.IsArchived,
		patient.ID,
	).Scan(&patient.UpdatedAt)
	return r.observe("patient_update", start, err)
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	start := time.Now()
	query := `SELECT ` + patientColumns + ` FROM patients
		WHERE is_archived = false
		ORDER BY created_at DESC, id DESC`

	patients := make([]*model.Patient, 0)
	err := r.db.SelectContext(ctx, &patients, query)
	if err := r.observe("patient_list", start, err); err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) Exists(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM patients WHERE id = $1)`, id)
	return exists, r.observe("patient_exists", start, err)
}

func (r *patientRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	start := time.Now()
	var taken bool
	err := r.db.GetContext(ctx, &taken,
		`SELECT EXISTS(SELECT 1 FROM patients WHERE email = $1 AND id <> $2)`, email, excludeID)
	return taken, r.observe("patient_email_taken", start, err)
}

func (r *patientRepository) GetMany(ctx context.Context, ids []int64) (map[int64]*model.Patient, error) {
	result := make(map[int64]*model.Patient, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	start := time.Now()
	query, args, err := sqlx.In(`SELECT `+patientColumns+` FROM patients WHERE id IN (?)`, ids)
	if err != nil {
		return nil, r.observe("patient_get_many", start, err)
	}

	var patients []*model.Patient
	err = r.db.SelectContext(ctx, &patients, r.db.Rebind(query), args...)
	if err := r.observe("patient_get_many", start, err); err != nil {
		return nil, err
	}
	for _, p := range patients {
		result[p.ID] = p
	}
	return result, nil
}

func (r *patientRepository) ListImagePaths(ctx context.Context) ([]string, error) {
	start := time.Now()
	paths := make([]string, 0)
	err := r.db.SelectContext(ctx, &paths,
		`SELECT profile_img FROM patients WHERE profile_img IS NOT NULL AND profile_img <> ''`)
	if err := r.observe("patient_image_paths", start, err); err != nil {
		return nil, err
	}
	return paths, nil
}
