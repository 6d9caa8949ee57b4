package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpix/stockpix-backend/internal/repo"
	"github.com/stockpix/stockpix-backend/pkg/db/models"
	"github.com/stockpix/stockpix-backend/pkg/listing"
)

// Repository persists user rows.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads a live user by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail loads a live user by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindOnlyDeleted loads a soft-deleted user by id; live rows do not match.
func (r *Repository) FindOnlyDeleted(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.DB(ctx).Unscoped().
		Where("id = ? AND deleted_at IS NOT NULL", id).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row.
func (r *Repository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if err := r.DB(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// Update persists changed columns of an existing user row.
func (r *Repository) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if err := r.DB(ctx).Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// EmailTaken reports whether another live user already holds the email.
func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	return r.columnTaken(ctx, "email", email, excludeID)
}

// UsernameTaken reports whether another live user already holds the username.
func (r *Repository) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	return r.columnTaken(ctx, "username", username, excludeID)
}

func (r *Repository) columnTaken(ctx context.Context, column, value string, excludeID uuid.UUID) (bool, error) {
	if value == "" {
		return false, nil
	}
	query := r.DB(ctx).Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SoftDelete marks the user deleted without removing the row.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.User{}).Error
}

// Restore clears the soft-delete marker on a previously deleted user.
func (r *Repository) Restore(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Unscoped().Model(&models.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil).Error
}

// ForceDelete removes a soft-deleted user row permanently.
func (r *Repository) ForceDelete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Unscoped().
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Delete(&models.User{}).Error
}

// List executes a listing plan and returns one page of users.
func (r *Repository) List(ctx context.Context, plan listing.Plan) (listing.Page[models.User], error) {
	return repo.Paginate[models.User](r.DB(ctx), plan)
}

// StatCounts carries the raw tallies behind the stats endpoint.
type StatCounts struct {
	Total        int64
	Active       int64
	Subscribed   int64
	NewThisMonth int64
}

// CountStats tallies the live user base in one pass per bucket.
func (r *Repository) CountStats(ctx context.Context, monthStart time.Time) (StatCounts, error) {
	var counts StatCounts

	base := func() *gorm.DB { return r.DB(ctx).Model(&models.User{}) }

	if err := base().Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	if err := base().Where("status = ?", "active").Count(&counts.Active).Error; err != nil {
		return counts, err
	}
	if err := base().Where("subscription <> ?", "free").Count(&counts.Subscribed).Error; err != nil {
		return counts, err
	}
	if err := base().Where("created_at >= ?", monthStart).Count(&counts.NewThisMonth).Error; err != nil {
		return counts, err
	}
	return counts, nil
}
