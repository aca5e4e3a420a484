package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

// Store keeps every table in process memory. Records are copied on the
// way in and out, so callers never share state with the store.
type Store struct {
	mu           sync.RWMutex
	patients     map[int64]model.Patient
	payments     map[int64]model.Payment
	appointments map[int64]model.Appointment
	nextID       map[string]int64
	now          func() time.Time
}

func NewStore() *Store {
	return &Store{
		patients:     make(map[int64]model.Patient),
		payments:     make(map[int64]model.Payment),
		appointments: make(map[int64]model.Appointment),
		nextID:       make(map[string]int64),
		now:          time.Now,
	}
}

// NewStores exposes one Store through the repository interfaces.
func NewStores(s *Store) *repository.Stores {
	return &repository.Stores{
		Patients:     &patientRepository{s},
		Payments:     &paymentRepository{s},
		Appointments: &appointmentRepository{s},
		Pinger:       s,
		Close:        func() error { return nil },
	}
}

func (s *Store) PingContext(ctx context.Context) error {
	return ctx.Err()
}

// SeedAppointment inserts an appointment, assigning an id when zero.
func (s *Store) SeedAppointment(a model.Appointment) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == 0 {
		a.ID = s.id("appointments")
	} else if a.ID >= s.nextID["appointments"] {
		s.nextID["appointments"] = a.ID
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
		a.UpdatedAt = a.CreatedAt
	}
	s.appointments[a.ID] = a
	return a.ID
}

func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

func (s *Store) emailTaken(email string, excludeID int64) bool {
	for id, p := range s.patients {
		if id != excludeID && p.Email == email {
			return true
		}
	}
	return false
}

type patientRepository struct{ s *Store }

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.emailTaken(patient.Email, 0) {
		return repository.ErrDuplicate
	}
	patient.ID = r.s.id("patients")
	patient.CreatedAt = r.s.now()
	patient.UpdatedAt = patient.CreatedAt
	r.s.patients[patient.ID] = *patient
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64, scope repository.Scope) (*model.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.patients[id]
	if !ok || (scope == repository.ActiveOnly && p.IsArchived) {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.patients[patient.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.s.emailTaken(patient.Email, patient.ID) {
		return repository.ErrDuplicate
	}
	patient.CreatedAt = existing.CreatedAt
	patient.UpdatedAt = r.s.now()
	r.s.patients[patient.ID] = *patient
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	patients := make([]*model.Patient, 0, len(r.s.patients))
	for _, p := range r.s.patients {
		if p.IsArchived {
			continue
		}
		p := p
		patients = append(patients, &p)
	}
	sort.Slice(patients, func(i, j int) bool {
		if !patients[i].CreatedAt.Equal(patients[j].CreatedAt) {
			return patients[i].CreatedAt.After(patients[j].CreatedAt)
		}
		return patients[i].ID > patients[j].ID
	})
	return patients, nil
}

func (r *patientRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.patients[id]
	return ok, nil
}

func (r *patientRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.emailTaken(email, excludeID), nil
}

func (r *patientRepository) GetMany(ctx context.Context, ids []int64) (map[int64]*model.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[int64]*model.Patient, len(ids))
	for _, id := range ids {
		if p, ok := r.s.patients[id]; ok {
			result[id] = &p
		}
	}
	return result, nil
}

func (r *patientRepository) ListImagePaths(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	paths := make([]string, 0)
	for _, p := range r.s.patients {
		if p.ProfileImg != nil && *p.ProfileImg != "" {
			paths = append(paths, *p.ProfileImg)
		}
	}
	return paths, nil
}

type paymentRepository struct{ s *Store }

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	payment.ID = r.s.id("payments")
	payment.CreatedAt = r.s.now()
	payment.UpdatedAt = payment.CreatedAt
	r.s.payments[payment.ID] = *payment
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id int64, scope repository.Scope) (*model.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.payments[id]
	if !ok || (scope == repository.ActiveOnly && p.IsArchived) {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.payments[payment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := existing
	updated.Amount = payment.Amount
	updated.PaymentMethod = payment.PaymentMethod
	updated.PaymentStatus = payment.PaymentStatus
	updated.TransactionDate = payment.TransactionDate
	updated.Remarks = payment.Remarks
	updated.IsArchived = payment.IsArchived
	updated.UpdatedAt = r.s.now()

	r.s.payments[payment.ID] = updated
	*payment = updated
	return nil
}

func (r *paymentRepository) List(ctx context.Context) ([]*model.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	payments := make([]*model.Payment, 0, len(r.s.payments))
	for _, p := range r.s.payments {
		if p.IsArchived {
			continue
		}
		p := p
		payments = append(payments, &p)
	}
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].TransactionDate.Equal(payments[j].TransactionDate) {
			return payments[i].TransactionDate.After(payments[j].TransactionDate)
		}
		return payments[i].ID > payments[j].ID
	})
	return payments, nil
}

type appointmentRepository struct{ s *Store }

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *appointmentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.appointments[id]
	return ok, nil
}

func (r *appointmentRepository) GetMany(ctx context.Context, ids []int64) (map[int64]*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[int64]*model.Appointment, len(ids))
	for _, id := range ids {
		if a, ok := r.s.appointments[id]; ok {
			result[id] = &a
		}
	}
	return result, nil
}
