package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/models"
	"github.com/01moynul/carlisting-golang/internal/repository"
)

type UserService struct {
	repo   repository.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an active, non-privileged user.
func (s *UserService) Register(ctx context.Context, in models.UserRegister) (*models.User, error) {
	return s.create(ctx, in.Email, in.Password, in.FullName, false)
}

func (s *UserService) create(ctx context.Context, email, password string, fullName *string, superuser bool) (*models.User, error) {
	var pw models.Password
	if err := pw.Set(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:             uuid.New(),
		Email:          strings.ToLower(strings.TrimSpace(email)),
		HashedPassword: pw.Hash,
		FullName:       fullName,
		IsActive:       true,
		IsSuperuser:    superuser,
		CreatedAt:      s.now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()), zap.Bool("superuser", superuser))
	return user, nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	pw := models.Password{Hash: user.HashedPassword}
	ok, err := pw.Matches(password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Delete removes a user and, through the foreign key, their listings.
// Superusers cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.ID == id {
		return ErrPermissionDenied
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", zap.String("user_id", id.String()), zap.String("actor_id", actor.ID.String()))
	return nil
}

// EnsureSuperuser creates the bootstrap superuser if the email is free.
func (s *UserService) EnsureSuperuser(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up superuser: %w", err)
	}

	if _, err := s.create(ctx, email, password, nil, true); err != nil && !errors.Is(err, ErrEmailTaken) {
		return err
	}
	return nil
}
