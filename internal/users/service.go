package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpix/stockpix-backend/pkg/config"
	"github.com/stockpix/stockpix-backend/pkg/db"
	"github.com/stockpix/stockpix-backend/pkg/db/models"
	"github.com/stockpix/stockpix-backend/pkg/enums"
	pkgerrors "github.com/stockpix/stockpix-backend/pkg/errors"
	"github.com/stockpix/stockpix-backend/pkg/listing"
	"github.com/stockpix/stockpix-backend/pkg/logger"
	"github.com/stockpix/stockpix-backend/pkg/security"
)

// Service exposes account management and admin operations.
type Service interface {
	ListUsers(ctx context.Context, input ListUsersInput) (*listing.Page[UserDTO], error)
	GetStats(ctx context.Context) (*StatsDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	UpdateStatus(ctx context.Context, targetID uuid.UUID, input UpdateStatusInput) (*UserDTO, error)
	DeleteUser(ctx context.Context, targetID uuid.UUID) error
	RestoreUser(ctx context.Context, targetID uuid.UUID) (*UserDTO, error)
	ForceDeleteUser(ctx context.Context, targetID uuid.UUID) error
}

// UpdateProfileInput carries the optional profile mutations for the
// authenticated user. Only non-nil fields change.
type UpdateProfileInput struct {
	Email    *string
	Username *string
	Phone    *string
	Bio      *string
}

// UpdateStatusInput carries the admin-side partial update. At least one
// field must be provided.
type UpdateStatusInput struct {
	Status       *enums.UserStatus
	Subscription *enums.SubscriptionTier
}

type service struct {
	repos       *Repository
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService wires the user service with its persistence dependencies.
func NewService(repos *Repository, passwordCfg config.PasswordConfig, logg *logger.Logger) Service {
	return &service{
		repos:       repos,
		passwordCfg: passwordCfg,
		logg:        logg,
		now:         time.Now,
	}
}

func (s *service) ListUsers(ctx context.Context, input ListUsersInput) (*listing.Page[UserDTO], error) {
	page, err := s.repos.List(ctx, input.Plan())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing users")
	}
	return NewUserPage(page), nil
}

func (s *service) GetStats(ctx context.Context) (*StatsDTO, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	counts, err := s.repos.CountStats(ctx, monthStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting users")
	}
	return NewStatsDTO(counts), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		taken, err := s.repos.EmailTaken(ctx, email, u.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email uniqueness")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is already in use")
		}
		u.Email = email
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "username cannot be empty")
		}
		taken, err := s.repos.UsernameTaken(ctx, username, u.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking username uniqueness")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is already in use")
		}
		u.Username = username
	}

	if input.Phone != nil {
		u.Phone = input.Phone
	}
	if input.Bio != nil {
		u.Bio = input.Bio
	}

	if _, err := s.repos.Update(ctx, u); err != nil {
		return nil, s.mapWriteError(err, "updating profile")
	}
	return NewUserDTO(u), nil
}

func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(current, u.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "current password is incorrect")
	}

	if err := security.CheckStrength(next); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	hash, err := security.HashPassword(next, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}
	u.PasswordHash = hash

	if _, err := s.repos.Update(ctx, u); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving password")
	}
	return nil
}

func (s *service) UpdateStatus(ctx context.Context, targetID uuid.UUID, input UpdateStatusInput) (*UserDTO, error) {
	if input.Status == nil && input.Subscription == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields provided to update")
	}

	u, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user status")
		}
		u.Status = *input.Status
	}
	if input.Subscription != nil {
		if !input.Subscription.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid subscription tier")
		}
		u.Subscription = *input.Subscription
	}

	if _, err := s.repos.Update(ctx, u); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating user status")
	}
	return NewUserDTO(u), nil
}

func (s *service) DeleteUser(ctx context.Context, targetID uuid.UUID) error {
	if _, err := s.findUser(ctx, targetID); err != nil {
		return err
	}
	if err := s.repos.SoftDelete(ctx, targetID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting user")
	}
	return nil
}

func (s *service) RestoreUser(ctx context.Context, targetID uuid.UUID) (*UserDTO, error) {
	if _, err := s.findOnlyDeleted(ctx, targetID); err != nil {
		return nil, err
	}
	if err := s.repos.Restore(ctx, targetID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restoring user")
	}
	u, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return NewUserDTO(u), nil
}

func (s *service) ForceDeleteUser(ctx context.Context, targetID uuid.UUID) error {
	if _, err := s.findOnlyDeleted(ctx, targetID); err != nil {
		return err
	}
	if err := s.repos.ForceDelete(ctx, targetID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "force deleting user")
	}
	return nil
}

func (s *service) findUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	u, err := s.repos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	return u, nil
}

func (s *service) findOnlyDeleted(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	u, err := s.repos.FindOnlyDeleted(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no deleted user with that id")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading deleted user")
	}
	return u, nil
}

// mapWriteError converts storage-level unique violations into validation
// errors; the pre-checks race with concurrent writers and the constraint is
// the authority.
func (s *service) mapWriteError(err error, op string) error {
	switch {
	case db.IsUniqueViolation(err, "idx_users_email"):
		return pkgerrors.New(pkgerrors.CodeValidation, "email is already in use")
	case db.IsUniqueViolation(err, "idx_users_username"):
		return pkgerrors.New(pkgerrors.CodeValidation, "username is already in use")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
