package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

func TestPatientScopesAndOrdering(t *testing.T) {
	s := NewStore()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { clock = clock.Add(time.Minute); return clock }
	stores := NewStores(s)
	ctx := context.Background()

	first := &model.Patient{FullName: "A", Email: "a@example.com"}
	second := &model.Patient{FullName: "B", Email: "b@example.com"}
	require.NoError(t, stores.Patients.Create(ctx, first))
	require.NoError(t, stores.Patients.Create(ctx, second))

	list, err := stores.Patients.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	first.IsArchived = true
	require.NoError(t, stores.Patients.Update(ctx, first))

	_, err = stores.Patients.Get(ctx, first.ID, repository.ActiveOnly)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := stores.Patients.Get(ctx, first.ID, repository.IncludeArchived)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)

	list, err = stores.Patients.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPatientUniqueEmail(t *testing.T) {
	stores := NewStores(NewStore())
	ctx := context.Background()

	require.NoError(t, stores.Patients.Create(ctx, &model.Patient{Email: "jane@example.com"}))
	err := stores.Patients.Create(ctx, &model.Patient{Email: "jane@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	// case folding happens on the request, as with the sql drivers
	taken, err := stores.Patients.EmailTaken(ctx, "JANE@example.com", 0)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = stores.Patients.EmailTaken(ctx, "jane@example.com", 1)
	require.NoError(t, err)
	assert.False(t, taken, "own id is excluded")
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	stores := NewStores(NewStore())
	ctx := context.Background()

	p := &model.Patient{FullName: "Jane", Email: "jane@example.com"}
	require.NoError(t, stores.Patients.Create(ctx, p))

	got, err := stores.Patients.Get(ctx, p.ID, repository.ActiveOnly)
	require.NoError(t, err)
	got.FullName = "changed"

	again, err := stores.Patients.Get(ctx, p.ID, repository.ActiveOnly)
	require.NoError(t, err)
	assert.Equal(t, "Jane", again.FullName)
}

func TestPaymentUpdateKeepsLinks(t *testing.T) {
	stores := NewStores(NewStore())
	ctx := context.Background()

	p := &model.Payment{PatientID: 3, Amount: 10}
	require.NoError(t, stores.Payments.Create(ctx, p))

	require.NoError(t, stores.Payments.Update(ctx, &model.Payment{Base: model.Base{ID: p.ID}, PatientID: 99, Amount: 20}))

	got, err := stores.Payments.Get(ctx, p.ID, repository.ActiveOnly)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.PatientID)
	assert.Equal(t, 20.0, got.Amount)
}
