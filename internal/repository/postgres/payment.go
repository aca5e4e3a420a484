package postgres

import (
	"context"
	"time"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

const paymentColumns = `id, patient_id, appointment_id, amount, payment_method, payment_status,
	transaction_date, remarks, is_archived, created_at, updated_at`

type paymentRepository struct {
	BaseRepository
}

func NewPaymentRepository(base BaseRepository) repository.PaymentRepository {
	return &paymentRepository{BaseRepository: base}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	start := time.Now()
	query := `
		INSERT INTO payments (patient_id, appointment_id, amount, payment_method, payment_status,
			transaction_date, remarks, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		payment.PatientID,
		payment.AppointmentID,
		payment.Amount,
		payment.PaymentMethod,
		payment.PaymentStatus,
		payment.TransactionDate,
		payment.Remarks,
		payment.IsArchived,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	return r.observe("payment_create", start, err)
}

func (r *paymentRepository) Get(ctx context.Context, id int64, scope repository.Scope) (*model.Payment, error) {
	start := time.Now()
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if scope == repository.ActiveOnly {
		query += ` AND is_archived = false`
	}

	var payment model.Payment
	err := r.db.GetContext(ctx, &payment, query, id)
	if err := r.observe("payment_get", start, err); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	start := time.Now()
	query := `
		UPDATE payments
		SET amount = $1, payment_method = $2, payment_status = $3, transaction_date = $4,
			remarks = $5, is_archived = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		payment.Amount,
		payment.PaymentMethod,
		payment.PaymentStatus,
		payment.TransactionDate,
		payment.Remarks,
		payment.IsArchived,
		payment.ID,
	).Scan(&payment.UpdatedAt)
	return r.observe("payment_update", start, err)
}

func (r *paymentRepository) List(ctx context.Context) ([]*model.Payment, error) {
	start := time.Now()
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE is_archived = false
		ORDER BY transaction_date DESC, id DESC`

	payments := make([]*model.Payment, 0)
	err := r.db.SelectContext(ctx, &payments, query)
	if err := r.observe("payment_list", start, err); err != nil {
		return nil, err
	}
	return payments, nil
}
