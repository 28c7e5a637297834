// Package repotest provides in-memory repositories for tests of the layers
// above persistence. They honour the same uniqueness rules as the Postgres
// schema and return the same sentinel errors.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/barbershop-api/internal/domain"
	"github.com/spec-kit/barbershop-api/internal/repository"
)

// Users is an in-memory repository.UserRepository.
type Users struct {
	mu    sync.Mutex
	byID  map[string]domain.User
	clock int64

	// Err, when set, is returned by every method.
	Err error
	// SkipLookups makes GetByEmail/GetByUsername/GetByCPF miss, which lets a
	// test reach the unique-constraint path in Create.
	SkipLookups bool
}

var _ repository.UserRepository = (*Users)(nil)

func NewUsers() *Users {
	return &Users{byID: map[string]domain.User{}}
}

func (u *Users) Create(_ context.Context, user *domain.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	for _, existing := range u.byID {
		switch {
		case existing.Email == user.Email:
			return &repository.DuplicateError{Constraint: repository.UsersEmailKey}
		case existing.Username == user.Username:
			return &repository.DuplicateError{Constraint: repository.UsersUsernameKey}
		case existing.CPF == user.CPF:
			return &repository.DuplicateError{Constraint: repository.UsersCPFKey}
		}
	}
	u.clock++
	user.CreatedAt = time.Unix(u.clock, 0).UTC()
	u.byID[user.ID] = *user
	return nil
}

func (u *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	return u.find(false, func(x domain.User) bool { return x.ID == id })
}

func (u *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return u.find(true, func(x domain.User) bool { return x.Email == email })
}

func (u *Users) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return u.find(false, func(x domain.User) bool { return x.Username == username })
}

func (u *Users) GetByCPF(_ context.Context, cpf string) (*domain.User, error) {
	return u.find(true, func(x domain.User) bool { return x.CPF == cpf })
}

func (u *Users) List(_ context.Context) ([]domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	out := make([]domain.User, 0, len(u.byID))
	for _, x := range u.byID {
		out = append(out, x)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (u *Users) Delete(_ context.Context, id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	if _, ok := u.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(u.byID, id)
	return nil
}

// Len returns the number of stored users.
func (u *Users) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.byID)
}

// find applies SkipLookups only to the pre-insert uniqueness lookups that pass
// skippable; GetByUsername stays live because login depends on it.
func (u *Users) find(skippable bool, match func(domain.User) bool) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	if skippable && u.SkipLookups {
		return nil, repository.ErrNotFound
	}
	for _, x := range u.byID {
		if match(x) {
			c := x
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Schedules is an in-memory repository.ScheduleRepository.
type Schedules struct {
	mu    sync.Mutex
	byID  map[string]domain.Schedule
	clock int64

	Err         error
	SkipLookups bool
}

var _ repository.ScheduleRepository = (*Schedules)(nil)

func NewSchedules() *Schedules {
	return &Schedules{byID: map[string]domain.Schedule{}}
}

func (s *Schedules) Create(_ context.Context, schedule *domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.slotTaken(schedule) {
		return &repository.DuplicateError{Constraint: repository.SchedulesSlotKey}
	}
	s.clock++
	schedule.CreatedAt = time.Unix(s.clock, 0).UTC()
	schedule.UpdatedAt = schedule.CreatedAt
	s.byID[schedule.ID] = *schedule
	return nil
}

func (s *Schedules) Update(_ context.Context, schedule *domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	current, ok := s.byID[schedule.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.slotTaken(schedule) {
		return &repository.DuplicateError{Constraint: repository.SchedulesSlotKey}
	}
	s.clock++
	schedule.CreatedAt = current.CreatedAt
	schedule.UpdatedAt = time.Unix(s.clock, 0).UTC()
	s.byID[schedule.ID] = *schedule
	return nil
}

func (s *Schedules) GetByID(_ context.Context, id string) (*domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	x, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &x, nil
}

func (s *Schedules) GetBySlot(_ context.Context, date, hour string) (*domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.SkipLookups {
		return nil, repository.ErrNotFound
	}
	for _, x := range s.byID {
		if x.Date == date && x.Hour == hour {
			c := x
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Schedules) List(_ context.Context) ([]domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.Schedule, 0, len(s.byID))
	for _, x := range s.byID {
		out = append(out, x)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Schedules) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// Caller holds mu.
func (s *Schedules) slotTaken(schedule *domain.Schedule) bool {
	for id, x := range s.byID {
		if id != schedule.ID && x.Date == schedule.Date && x.Hour == schedule.Hour {
			return true
		}
	}
	return false
}
