package orm

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jwalitptl/hospital-api/internal/repository"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 zerologAdapter{},
	})
	require.NoError(t, err)
	return db, mock
}

func TestGormPatientGetActiveOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(db)

	mock.ExpectQuery(`FROM "patients" WHERE is_archived = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), 7, repository.ActiveOnly)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGormPaymentListOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(`FROM "payments" WHERE is_archived = \$1 ORDER BY transaction_date DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "amount"}).
			AddRow(2, 1, 10.0).
			AddRow(1, 1, 20.0))

	payments, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, int64(2), payments[0].ID)
}

func TestGormGetManySkipsEmptyInput(t *testing.T) {
	db, _ := newMockDB(t)

	patients, err := NewPatientRepository(db).GetMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, patients)

	appointments, err := NewAppointmentRepository(db).GetMany(context.Background(), []int64{})
	require.NoError(t, err)
	assert.Empty(t, appointments)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError("op", nil))
	assert.ErrorIs(t, translateError("op", gorm.ErrRecordNotFound), repository.ErrNotFound)
	assert.ErrorIs(t, translateError("op", gorm.ErrDuplicatedKey), repository.ErrDuplicate)

	err := translateError("op", errors.New("conn reset"))
	assert.EqualError(t, err, "op: conn reset")
}
