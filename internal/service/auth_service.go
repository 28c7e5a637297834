package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/barbershop-api/internal/auth"
	"github.com/spec-kit/barbershop-api/internal/config"
	"github.com/spec-kit/barbershop-api/internal/domain"
	"github.com/spec-kit/barbershop-api/internal/events"
	"github.com/spec-kit/barbershop-api/internal/limiter"
	"github.com/spec-kit/barbershop-api/internal/repository"
	apperrors "github.com/spec-kit/barbershop-api/pkg/util/errorutil"
)

// ThrottleRecorder counts logins refused by the limiter.
type ThrottleRecorder interface {
	RecordLoginThrottled()
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name      string
	Email     string
	Username  string
	Password  string
	Birthdate string
	CPF       string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	hasher     *auth.Hasher
	tokens     *auth.TokenCodec
	limiter    limiter.LoginLimiter
	dispatcher events.Dispatcher
	throttled  ThrottleRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Limiter    limiter.LoginLimiter
	Dispatcher events.Dispatcher
	Throttled  ThrottleRecorder
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lim := deps.Limiter
	if lim == nil {
		lim = limiter.NewMemoryLimiter(cfg.Login.MaxFailures, cfg.Login.LockWindow())
	}
	return &AuthService{
		users:      deps.UserRepo,
		hasher:     auth.NewHasher(cfg.Auth.BcryptCost),
		tokens:     auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		limiter:    lim,
		dispatcher: deps.Dispatcher,
		throttled:  deps.Throttled,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a regular account. Admin rights are never granted here.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, false)
}

// CreateAdmin creates an account carrying the admin claim.
func (s *AuthService) CreateAdmin(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, true)
}

func (s *AuthService) register(ctx context.Context, in RegisterInput, admin bool) (*domain.User, error) {
	user, password, err := validateRegistration(in, s.now())
	if err != nil {
		return nil, err
	}
	user.IsAdmin = admin

	if err := s.ensureUnique(ctx, user); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	user.ID = uuid.NewString()

	token, _, err := s.tokens.Issue(claimsFor(user))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user.Token = token

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, userExists(err)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.New(events.EventUserRegistered, user.ID, user.ID, events.UserRegisteredPayload{
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}))
	return user, nil
}

// ensureUnique gives a friendly error for the common case; the unique indexes
// still decide concurrent registrations.
func (s *AuthService) ensureUnique(ctx context.Context, user *domain.User) error {
	checks := []struct {
		field  string
		lookup func(context.Context, string) (*domain.User, error)
		value  string
	}{
		{"email", s.users.GetByEmail, user.Email},
		{"username", s.users.GetByUsername, user.Username},
		{"cpf", s.users.GetByCPF, user.CPF},
	}
	for _, check := range checks {
		_, err := check.lookup(ctx, check.value)
		switch {
		case err == nil:
			return apperrors.NewConflict("User already exists", map[string]any{"field": check.field})
		case errors.Is(err, repository.ErrNotFound):
			continue
		default:
			return apperrors.NewInternalError(err)
		}
	}
	return nil
}

// Login verifies credentials and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, domain.IssuedToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.IssuedToken{}, apperrors.NewValidationError("Invalid body", map[string]any{"required": []string{"username", "password"}})
	}

	allowed, err := s.limiter.Allow(ctx, username)
	if err != nil {
		// fail open
		s.logger.Warn("login limiter unavailable", zap.Error(err))
		allowed = true
	}
	if !allowed {
		if s.throttled != nil {
			s.throttled.RecordLoginThrottled()
		}
		return nil, domain.IssuedToken{}, apperrors.NewRateLimited("Too many login attempts")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.IssuedToken{}, apperrors.NewNotFound("User not found")
		}
		return nil, domain.IssuedToken{}, apperrors.NewInternalError(err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, domain.IssuedToken{}, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, domain.IssuedToken{}, apperrors.NewInvalidCredentials("Invalid password")
	}
	if err := s.limiter.Success(ctx, username); err != nil {
		s.logger.Warn("reset login attempts", zap.Error(err))
	}

	token, exp, err := s.tokens.Issue(claimsFor(user))
	if err != nil {
		return nil, domain.IssuedToken{}, apperrors.NewInternalError(err)
	}
	return user, domain.IssuedToken{Token: token, ExpiresAt: exp}, nil
}

// TokenCodec exposes the underlying codec for the access gate.
func (s *AuthService) TokenCodec() *auth.TokenCodec {
	return s.tokens
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func claimsFor(user *domain.User) auth.Claims {
	return auth.Claims{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
}

func userExists(err error) error {
	details := map[string]any{}
	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		switch dup.Constraint {
		case repository.UsersEmailKey:
			details["field"] = "email"
		case repository.UsersUsernameKey:
			details["field"] = "username"
		case repository.UsersCPFKey:
			details["field"] = "cpf"
		}
	}
	return apperrors.NewConflict("User already exists", details)
}

func validateRegistration(in RegisterInput, now time.Time) (*domain.User, string, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"username", in.Username},
		{"password", in.Password},
		{"birthdate", in.Birthdate},
		{"cpf", in.CPF},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, "", apperrors.NewValidationError("Invalid body", map[string]any{"missing": missing})
	}

	email, ok := normalizeEmail(in.Email)
	if !ok {
		return nil, "", apperrors.NewValidationError("Invalid email", nil)
	}
	cpf, ok := normalizeCPF(in.CPF)
	if !ok {
		return nil, "", apperrors.NewValidationError("Invalid CPF", nil)
	}
	birthdate, day, ok := parseDate(in.Birthdate, time.UTC)
	if !ok || day.After(now) {
		return nil, "", apperrors.NewValidationError("Invalid birthdate", nil)
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, "", apperrors.NewValidationError("Password too long", map[string]any{"max_bytes": auth.MaxPasswordBytes})
	}

	return &domain.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Username:  strings.TrimSpace(in.Username),
		Birthdate: birthdate,
		CPF:       cpf,
	}, in.Password, nil
}
