package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockpix/stockpix-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	Name            string                 `gorm:"column:name;not null"`
	Email           string                 `gorm:"column:email;not null;uniqueIndex:idx_users_email"`
	Username        string                 `gorm:"column:username;uniqueIndex:idx_users_username"`
	Phone           *string                `gorm:"column:phone"`
	Bio             *string                `gorm:"column:bio"`
	PasswordHash    string                 `gorm:"column:password_hash;not null"`
	Role            string                 `gorm:"column:role;not null;default:user"`
	Status          enums.UserStatus       `gorm:"column:status;not null;default:active"`
	Subscription    enums.SubscriptionTier `gorm:"column:subscription;not null;default:free"`
	LastLoginAt     *time.Time             `gorm:"column:last_login_at"`
	EmailVerifiedAt *time.Time             `gorm:"column:email_verified_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt       gorm.DeletedAt         `gorm:"column:deleted_at;index"`
}
