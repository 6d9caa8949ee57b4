package image

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpix/stockpix-backend/pkg/db/models"
	"github.com/stockpix/stockpix-backend/pkg/listing"
)

// ImageDTO represents the image payload returned to clients. Internal
// bookkeeping columns (timestamps, soft-delete marker, raw storage path)
// are not exposed; ImageURL carries the browsable location instead.
type ImageDTO struct {
	ID          uuid.UUID       `json:"id"`
	ImageURL    *string         `json:"image_url"`
	Title       string          `json:"title"`
	Tags        string          `json:"tags,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	CategoryID  *int64          `json:"category_id"`
	Status      string          `json:"status"`
	Alt         string          `json:"alt,omitempty"`
	UserID      uuid.UUID       `json:"user_id"`
}

// URLResolver maps a stored relative path to its public URL.
type URLResolver interface {
	PublicURL(relative string) *string
}

// NewImageDTO builds a DTO from the persisted model.
func NewImageDTO(img *models.Image, urls URLResolver) *ImageDTO {
	dto := &ImageDTO{
		ID:          img.ID,
		Title:       img.Title,
		Tags:        img.Tags,
		Price:       img.Price,
		Description: img.Description,
		CategoryID:  img.CategoryID,
		Status:      img.Status.String(),
		Alt:         img.Alt,
		UserID:      img.UserID,
	}
	if urls != nil {
		dto.ImageURL = urls.PublicURL(img.ImagePath)
	}
	return dto
}

// NewImagePage maps a page of models onto DTOs, keeping the pagination frame.
func NewImagePage(page listing.Page[models.Image], urls URLResolver) *listing.Page[ImageDTO] {
	items := make([]ImageDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *NewImageDTO(&page.Items[i], urls))
	}
	return &listing.Page[ImageDTO]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	}
}
