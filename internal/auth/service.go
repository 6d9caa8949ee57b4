package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	user "github.com/stockpix/stockpix-backend/internal/users"
	pkgauth "github.com/stockpix/stockpix-backend/pkg/auth"
	"github.com/stockpix/stockpix-backend/pkg/config"
	"github.com/stockpix/stockpix-backend/pkg/db"
	"github.com/stockpix/stockpix-backend/pkg/db/models"
	pkgerrors "github.com/stockpix/stockpix-backend/pkg/errors"
	"github.com/stockpix/stockpix-backend/pkg/logger"
	"github.com/stockpix/stockpix-backend/pkg/redis"
	"github.com/stockpix/stockpix-backend/pkg/security"
)

// Service exposes registration and credential operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// ResetTokenStore persists single-use password reset tokens.
type ResetTokenStore interface {
	StoreResetToken(ctx context.Context, token, userID string, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}

// RegisterInput carries the validated signup payload.
type RegisterInput struct {
	Name                 string
	Email                string
	Username             string
	Password             string
	PasswordConfirmation string
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

type service struct {
	users  *user.Repository
	tokens ResetTokenStore
	cfg    *config.Config
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires the auth service with its persistence and token stores.
func NewService(users *user.Repository, tokens ResetTokenStore, cfg *config.Config, logg *logger.Logger) Service {
	return &service{
		users:  users,
		tokens: tokens,
		cfg:    cfg,
		logg:   logg,
		now:    time.Now,
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)

	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if input.Password != input.PasswordConfirmation {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password confirmation does not match")
	}
	if err := security.CheckStrength(input.Password); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	if taken, err := s.users.EmailTaken(ctx, email, uuid.Nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email uniqueness")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is already in use")
	}

	if username == "" {
		username = usernameFromEmail(email)
	}
	if taken, err := s.users.UsernameTaken(ctx, username, uuid.Nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking username uniqueness")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is already in use")
	}

	hash, err := security.HashPassword(input.Password, s.cfg.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	u := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         "user",
	}
	if _, err := s.users.Create(ctx, u); err != nil {
		return nil, mapRegisterError(err)
	}

	return s.mintResult(ctx, u)
}

// mapRegisterError converts storage-level unique violations into validation
// errors. The pre-checks above only see live rows while the indexes also
// cover soft-deleted accounts, whose email and username stay reserved until
// the account is restored or purged.
func mapRegisterError(err error) error {
	switch {
	case db.IsUniqueViolation(err, "idx_users_email"):
		return pkgerrors.New(pkgerrors.CodeValidation, "email is already in use")
	case db.IsUniqueViolation(err, "idx_users_username"):
		return pkgerrors.New(pkgerrors.CodeValidation, "username is already in use")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	ok, err := security.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	loginAt := s.now().UTC()
	u.LastLoginAt = &loginAt
	if _, err := s.users.Update(ctx, u); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording login")
	}

	return s.mintResult(ctx, u)
}

// ForgotPassword mints a single-use reset token. The endpoint succeeds for
// unknown emails so account existence cannot be probed; delivery is outside
// this service.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	token := uuid.NewString()
	if err := s.tokens.StoreResetToken(ctx, token, u.ID.String(), s.cfg.Password.ResetTokenTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing reset token")
	}

	if s.cfg.App.IsDev() {
		s.logg.Debug(s.logg.WithUserID(ctx, u.ID.String()), "password reset token minted: "+token)
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reset token is required")
	}
	if err := security.CheckStrength(password); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	userID, err := s.tokens.ConsumeResetToken(ctx, token)
	if err != nil {
		if redis.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeValidation, "reset token is invalid or expired")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consuming reset token")
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing stored user id")
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	hash, err := security.HashPassword(password, s.cfg.Password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}
	u.PasswordHash = hash

	if _, err := s.users.Update(ctx, u); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving password")
	}
	return nil
}

func (s *service) mintResult(ctx context.Context, u *models.User) (*AuthResult, error) {
	token, err := pkgauth.MintAccessToken(s.cfg.JWT, s.now(), pkgauth.AccessTokenPayload{
		UserID: u.ID,
		Role:   u.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	return &AuthResult{Token: token, Name: u.Name}, nil
}

func usernameFromEmail(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	return local + "_" + uuid.NewString()[:8]
}
