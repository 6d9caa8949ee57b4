package image

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockpix/stockpix-backend/pkg/db/models"
	"github.com/stockpix/stockpix-backend/pkg/enums"
	pkgerrors "github.com/stockpix/stockpix-backend/pkg/errors"
	"github.com/stockpix/stockpix-backend/pkg/listing"
	"github.com/stockpix/stockpix-backend/pkg/logger"
)

const maxTitleLen = 150

// Service exposes image management operations.
type Service interface {
	ListImages(ctx context.Context, input ListImagesInput) (*listing.Page[ImageDTO], error)
	CreateImage(ctx context.Context, input CreateImageInput) (*ImageDTO, error)
	UpdateImage(ctx context.Context, input UpdateImageInput) (*ImageDTO, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
}

// FileStore persists uploads and resolves their public URLs.
type FileStore interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
	Delete(relative string) error
	PublicURL(relative string) *string
}

// CreateImageInput holds the validated payload to create an image.
type CreateImageInput struct {
	File        multipart.File
	Header      *multipart.FileHeader
	Title       string
	Tags        string
	Price       decimal.Decimal
	Description string
	CategoryID  *int64
	Status      *enums.ImageStatus
	Alt         string
	UserID      uuid.UUID
}

// UpdateImageInput holds optional mutation values for an image. Only
// non-nil fields change; absent fields keep their stored values.
type UpdateImageInput struct {
	ID          uuid.UUID
	File        multipart.File
	Header      *multipart.FileHeader
	Title       *string
	Tags        *string
	Price       *decimal.Decimal
	Description *string
	CategoryID  *int64
	Status      *enums.ImageStatus
	Alt         *string
}

type service struct {
	repos *Repository
	files FileStore
	logg  *logger.Logger
}

// NewService wires the image service with its persistence and storage deps.
func NewService(repos *Repository, files FileStore, logg *logger.Logger) Service {
	return &service{repos: repos, files: files, logg: logg}
}

func (s *service) ListImages(ctx context.Context, input ListImagesInput) (*listing.Page[ImageDTO], error) {
	page, err := s.repos.List(ctx, input.Plan())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing images")
	}
	return NewImagePage(page, s.files), nil
}

func (s *service) CreateImage(ctx context.Context, input CreateImageInput) (*ImageDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || len(title) > maxTitleLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required and must be at most 150 characters")
	}
	if input.File == nil || input.Header == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "an image file is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id is required")
	}

	status := enums.ImageStatusPending
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid image status")
		}
		status = *input.Status
	}

	path, err := s.files.Save(input.File, input.Header)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing upload")
	}

	img := &models.Image{
		ID:          uuid.New(),
		ImagePath:   path,
		Title:       title,
		Tags:        strings.TrimSpace(input.Tags),
		Price:       input.Price,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Status:      status,
		Alt:         strings.TrimSpace(input.Alt),
		UserID:      input.UserID,
	}

	if _, err := s.repos.Create(ctx, img); err != nil {
		// The row never landed, so the stored file is orphaned.
		if cleanupErr := s.files.Delete(path); cleanupErr != nil {
			s.logg.Warn(ctx, "failed to remove orphaned upload "+path)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating image")
	}

	return NewImageDTO(img, s.files), nil
}

func (s *service) UpdateImage(ctx context.Context, input UpdateImageInput) (*ImageDTO, error) {
	img, err := s.findImage(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" || len(title) > maxTitleLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required and must be at most 150 characters")
		}
		img.Title = title
	}
	if input.Tags != nil {
		img.Tags = strings.TrimSpace(*input.Tags)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		img.Price = *input.Price
	}
	if input.Description != nil {
		img.Description = *input.Description
	}
	if input.CategoryID != nil {
		img.CategoryID = input.CategoryID
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid image status")
		}
		img.Status = *input.Status
	}
	if input.Alt != nil {
		img.Alt = strings.TrimSpace(*input.Alt)
	}

	oldPath := ""
	if input.File != nil && input.Header != nil {
		path, err := s.files.Save(input.File, input.Header)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing upload")
		}
		oldPath = img.ImagePath
		img.ImagePath = path
	}

	if _, err := s.repos.Update(ctx, img); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating image")
	}

	if oldPath != "" {
		if err := s.files.Delete(oldPath); err != nil {
			s.logg.Warn(ctx, "failed to remove replaced upload "+oldPath)
		}
	}

	return NewImageDTO(img, s.files), nil
}

func (s *service) DeleteImage(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findImage(ctx, id); err != nil {
		return err
	}
	// Soft delete keeps the row and the stored file; a later restore or
	// hard-delete pass decides what happens to the binary.
	if err := s.repos.SoftDelete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting image")
	}
	return nil
}

func (s *service) findImage(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image id is required")
	}
	img, err := s.repos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading image")
	}
	return img, nil
}
