package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/barbershop-api/internal/domain"
	"github.com/spec-kit/barbershop-api/internal/events"
	"github.com/spec-kit/barbershop-api/internal/repository"
	apperrors "github.com/spec-kit/barbershop-api/pkg/util/errorutil"
)

// UserService exposes account administration.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, dispatcher: dispatcher, logger: logger}
}

// List returns every account, oldest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// Get loads one account. Malformed and unknown ids both read as "User not found".
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewMissingReference("User not found", id)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewMissingReference("User not found", id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Delete removes an account. actorID is the admin performing the removal.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewMissingReference("User not found", id)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewMissingReference("User not found", id)
		}
		return apperrors.NewInternalError(err)
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.Publish(ctx, events.New(events.EventUserDeleted, id, actorID, nil)); err != nil {
			s.logger.Warn("event handler failed", zap.String("event_type", string(events.EventUserDeleted)), zap.Error(err))
		}
	}
	return nil
}
