package orm

import (
	"context"

	"gorm.io/gorm"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return translateError("payment_create", r.db.WithContext(ctx).Create(payment).Error)
}

func (r *paymentRepository) Get(ctx context.Context, id int64, scope repository.Scope) (*model.Payment, error) {
	q := r.db.WithContext(ctx)
	if scope == repository.ActiveOnly {
		q = q.Where("is_archived = ?", false)
	}

	var payment model.Payment
	if err := q.First(&payment, id).Error; err != nil {
		return nil, translateError("payment_get", err)
	}
	return &payment, nil
}

// Update writes the mutable columns only; patient and appointment links
// are fixed at creation.
func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	res := r.db.WithContext(ctx).Model(payment).
		Select("amount", "payment_method", "payment_status", "transaction_date", "remarks", "is_archived", "updated_at").
		Updates(payment)
	if res.Error != nil {
		return translateError("payment_update", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *paymentRepository) List(ctx context.Context) ([]*model.Payment, error) {
	payments := make([]*model.Payment, 0)
	err := r.db.WithContext(ctx).
		Where("is_archived = ?", false).
		Order("transaction_date DESC").Order("id DESC").
		Find(&payments).Error
	if err != nil {
		return nil, translateError("payment_list", err)
	}
	return payments, nil
}
