package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

var paymentCols = []string{
	"id", "patient_id", "appointment_id", "amount", "payment_method", "payment_status",
	"transaction_date", "remarks", "is_archived", "created_at", "updated_at",
}

func TestPaymentCreate(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewPaymentRepository(base)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO payments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(5, now, now))

	p := &model.Payment{PatientID: 1, Amount: 100, PaymentMethod: model.PaymentMethodCash, PaymentStatus: model.PaymentStatusPaid}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(5), p.ID)
}

func TestPaymentGetActiveOnlyHidesArchived(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewPaymentRepository(base)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE id = $1 AND is_archived = false")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(paymentCols))

	_, err := repo.Get(context.Background(), 5, repository.ActiveOnly)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPaymentListOrdersByTransactionDate(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewPaymentRepository(base)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY transaction_date DESC, id DESC")).
		WillReturnRows(sqlmock.NewRows(paymentCols).
			AddRow(2, 1, 3, 50.5, "Card", "Pending", day, "first visit", false, day, day).
			AddRow(1, 1, nil, 100.0, "Cash", "Paid", day.AddDate(0, 0, -1), nil, false, day, day))

	payments, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, model.PaymentMethodCard, payments[0].PaymentMethod)
	require.NotNil(t, payments[0].AppointmentID)
	assert.Equal(t, int64(3), *payments[0].AppointmentID)
	assert.Nil(t, payments[1].AppointmentID)
}

func TestAppointmentExists(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewAppointmentRepository(base)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM appointments WHERE id = $1)")).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.Exists(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, ok)
}
