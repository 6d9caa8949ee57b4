package image

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpix/stockpix-backend/internal/repo"
	"github.com/stockpix/stockpix-backend/pkg/db/models"
	"github.com/stockpix/stockpix-backend/pkg/listing"
)

// Repository persists image rows.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads a live image by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	var img models.Image
	if err := r.DB(ctx).First(&img, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

// Create inserts a new image row.
func (r *Repository) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	if err := r.DB(ctx).Create(img).Error; err != nil {
		return nil, err
	}
	return img, nil
}

// Update persists changed columns of an existing image row.
func (r *Repository) Update(ctx context.Context, img *models.Image) (*models.Image, error) {
	if err := r.DB(ctx).Save(img).Error; err != nil {
		return nil, err
	}
	return img, nil
}

// SoftDelete marks the image deleted without removing the row.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Image{}).Error
}

// List executes a listing plan and returns one page of images.
func (r *Repository) List(ctx context.Context, plan listing.Plan) (listing.Page[models.Image], error) {
	return repo.Paginate[models.Image](r.DB(ctx), plan)
}
