package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpix/stockpix-backend/pkg/db/models"
	"github.com/stockpix/stockpix-backend/pkg/listing"
)

// UserDTO represents the user payload returned to clients. The password
// hash never leaves the service layer.
type UserDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Username     string     `json:"username,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Bio          *string    `json:"bio,omitempty"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	Subscription string     `json:"subscription"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// NewUserDTO builds a DTO from the persisted model.
func NewUserDTO(u *models.User) *UserDTO {
	return &UserDTO{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Username:     u.Username,
		Phone:        u.Phone,
		Bio:          u.Bio,
		Role:         u.Role,
		Status:       u.Status.String(),
		Subscription: u.Subscription.String(),
		LastLoginAt:  u.LastLoginAt,
	}
}

// NewUserPage maps a page of models onto DTOs, keeping the pagination frame.
func NewUserPage(page listing.Page[models.User]) *listing.Page[UserDTO] {
	items := make([]UserDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *NewUserDTO(&page.Items[i]))
	}
	return &listing.Page[UserDTO]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	}
}

// StatBucket pairs a count with its share of the total.
type StatBucket struct {
	Count int64           `json:"count"`
	Pct   decimal.Decimal `json:"pct"`
}

// StatsDTO summarizes the live user base.
type StatsDTO struct {
	Total        int64      `json:"total"`
	Active       StatBucket `json:"active"`
	Subscribed   StatBucket `json:"subscribed"`
	NewThisMonth StatBucket `json:"new_this_month"`
}

// NewStatsDTO computes percentages rounded to two decimals. All shares are
// zero when the user base is empty.
func NewStatsDTO(counts StatCounts) *StatsDTO {
	return &StatsDTO{
		Total:        counts.Total,
		Active:       statBucket(counts.Active, counts.Total),
		Subscribed:   statBucket(counts.Subscribed, counts.Total),
		NewThisMonth: statBucket(counts.NewThisMonth, counts.Total),
	}
}

func statBucket(count, total int64) StatBucket {
	bucket := StatBucket{Count: count, Pct: decimal.Zero}
	if total == 0 {
		return bucket
	}
	bucket.Pct = decimal.NewFromInt(count).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(2)
	return bucket
}
