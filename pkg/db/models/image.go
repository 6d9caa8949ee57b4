package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockpix/stockpix-backend/pkg/enums"
)

// Image represents one marketplace listing. ImagePath is the path relative
// to the public storage directory; the DTO layer turns it into a URL.
// A nil or zero CategoryID both mean uncategorized.
type Image struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ImagePath   string            `gorm:"column:image_path;not null"`
	Title       string            `gorm:"column:title;not null"`
	Tags        string            `gorm:"column:tags"`
	Price       decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null"`
	Description string            `gorm:"column:description"`
	CategoryID  *int64            `gorm:"column:category_id"`
	Status      enums.ImageStatus `gorm:"column:status;not null;default:Pending"`
	Alt         string            `gorm:"column:alt"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt    `gorm:"column:deleted_at;index"`
}
