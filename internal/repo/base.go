package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockpix/stockpix-backend/pkg/listing"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Paginate runs the two-step listing fetch for any model type: a count over
// the fully scoped predicate set, then one page of rows. The plan's
// conditions are applied to fresh sessions of the handle so the count query
// never leaks state into the fetch.
func Paginate[T any](db *gorm.DB, plan listing.Plan) (listing.Page[T], error) {
	var model T

	var total int64
	countQuery := plan.Conditions(db.Session(&gorm.Session{}).Model(&model))
	if err := countQuery.Count(&total).Error; err != nil {
		return listing.Page[T]{}, err
	}

	var items []T
	fetchQuery := plan.Conditions(db.Session(&gorm.Session{}).Model(&model)).
		Order(plan.OrderClause()).
		Offset(plan.Offset()).
		Limit(plan.PerPage())
	if err := fetchQuery.Find(&items).Error; err != nil {
		return listing.Page[T]{}, err
	}

	return listing.NewPage(items, total, plan), nil
}
