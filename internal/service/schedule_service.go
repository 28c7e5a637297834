package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/spec-kit/barbershop-api/internal/domain"
	"github.com/spec-kit/barbershop-api/internal/events"
	"github.com/spec-kit/barbershop-api/internal/repository"
	apperrors "github.com/spec-kit/barbershop-api/pkg/util/errorutil"
)

// ScheduleInput carries a slot and optional text. Nil Title or Body on update
// keeps the stored value.
type ScheduleInput struct {
	Date  string
	Hour  string
	Title *string
	Body  *string
}

// ScheduleService validates and stores appointments.
type ScheduleService struct {
	schedules  repository.ScheduleRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	sanitizer  *bluemonday.Policy
	loc        *time.Location
	now        func() time.Time
}

// ScheduleDependencies encapsulates collaborators for the schedule service.
type ScheduleDependencies struct {
	ScheduleRepo repository.ScheduleRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Location     *time.Location
}

// NewScheduleService builds the service. Past dates are judged in deps.Location.
func NewScheduleService(deps ScheduleDependencies) *ScheduleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleService{
		schedules:  deps.ScheduleRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		sanitizer:  bluemonday.StrictPolicy(),
		loc:        loc,
		now:        time.Now,
	}
}

// Create books a free slot on today or a later date.
func (s *ScheduleService) Create(ctx context.Context, actorID string, in ScheduleInput) (*domain.Schedule, error) {
	date, hour, err := s.validateSlot(in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlotFree(ctx, date, hour, ""); err != nil {
		return nil, err
	}

	schedule := &domain.Schedule{
		ID:    uuid.NewString(),
		Date:  date,
		Hour:  hour,
		Title: s.clean(in.Title),
		Body:  s.clean(in.Body),
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, s.mapWriteError(err, schedule)
	}

	s.publish(ctx, events.EventScheduleCreated, actorID, schedule)
	return schedule, nil
}

// List returns every schedule, oldest first.
func (s *ScheduleService) List(ctx context.Context) ([]domain.Schedule, error) {
	schedules, err := s.schedules.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return schedules, nil
}

// Get loads one schedule by id.
func (s *ScheduleService) Get(ctx context.Context, id string) (*domain.Schedule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewMissingReference("Schedule not found", id)
	}
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewMissingReference("Schedule not found", id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return schedule, nil
}

// Update moves a schedule to a new slot. The schedule's own slot does not
// count as taken.
func (s *ScheduleService) Update(ctx context.Context, actorID, id string, in ScheduleInput) (*domain.Schedule, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	date, hour, err := s.validateSlot(in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlotFree(ctx, date, hour, existing.ID); err != nil {
		return nil, err
	}

	existing.Date = date
	existing.Hour = hour
	if in.Title != nil {
		existing.Title = s.clean(in.Title)
	}
	if in.Body != nil {
		existing.Body = s.clean(in.Body)
	}
	if err := s.schedules.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewMissingReference("Schedule not found", id)
		}
		return nil, s.mapWriteError(err, existing)
	}

	s.publish(ctx, events.EventScheduleUpdated, actorID, existing)
	return existing, nil
}

// Delete frees the slot held by the schedule.
func (s *ScheduleService) Delete(ctx context.Context, actorID, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.schedules.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewMissingReference("Schedule not found", id)
		}
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventScheduleDeleted, actorID, existing)
	return nil
}

func (s *ScheduleService) validateSlot(in ScheduleInput) (string, string, error) {
	var missing []string
	if strings.TrimSpace(in.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(in.Hour) == "" {
		missing = append(missing, "hour")
	}
	if len(missing) > 0 {
		return "", "", apperrors.NewValidationError("Invalid body", map[string]any{"missing": missing})
	}

	date, day, ok := parseDate(in.Date, s.loc)
	if !ok || day.Before(startOfDay(s.now().In(s.loc))) {
		return "", "", apperrors.NewValidationError("Invalid date", map[string]any{"date": in.Date})
	}
	hour, ok := parseHour(in.Hour)
	if !ok {
		return "", "", apperrors.NewValidationError("Invalid hour", map[string]any{"hour": in.Hour})
	}
	return date, hour, nil
}

func (s *ScheduleService) ensureSlotFree(ctx context.Context, date, hour, selfID string) error {
	taken, err := s.schedules.GetBySlot(ctx, date, hour)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return apperrors.NewInternalError(err)
	case taken.ID == selfID:
		return nil
	default:
		return hourTaken(date, hour)
	}
}

func (s *ScheduleService) mapWriteError(err error, schedule *domain.Schedule) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return hourTaken(schedule.Date, schedule.Hour)
	}
	return apperrors.NewInternalError(err)
}

func (s *ScheduleService) clean(text *string) string {
	if text == nil {
		return ""
	}
	return strings.TrimSpace(s.sanitizer.Sanitize(*text))
}

func (s *ScheduleService) publish(ctx context.Context, eventType events.EventType, actorID string, schedule *domain.Schedule) {
	if s.dispatcher == nil {
		return
	}
	event := events.New(eventType, schedule.ID, actorID, events.SchedulePayload{
		Date:  schedule.Date,
		Hour:  schedule.Hour,
		Title: schedule.Title,
	})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func hourTaken(date, hour string) error {
	return apperrors.NewConflict("Hour already exists", map[string]any{"date": date, "hour": hour})
}
