package image

import (
	"github.com/google/uuid"

	"github.com/stockpix/stockpix-backend/pkg/enums"
	"github.com/stockpix/stockpix-backend/pkg/listing"
)

// Registry declares which image fields the listing endpoint may filter,
// search, and sort on. Anything outside these sets is ignored or replaced
// by the default before a query is built.
var Registry = listing.Registry{
	Filterable:  []string{"status", "user_id", "category_id"},
	Searchable:  []string{"title", "tags", "description", "alt"},
	Sortable:    []string{"id", "title", "price", "status", "created_at"},
	DefaultSort: "created_at",
}

// ListImagesInput captures the normalized browse parameters.
type ListImagesInput struct {
	Status     *enums.ImageStatus
	UserID     *uuid.UUID
	CategoryID *int64
	Search     string
	SortBy     string
	SortOrder  listing.SortOrder
	Page       int
	PerPage    int
}

// Plan turns the input into an executable listing plan.
func (in ListImagesInput) Plan() listing.Plan {
	b := listing.NewBuilder(Registry)
	if in.Status != nil {
		b.Equals("status", in.Status.String())
	}
	if in.UserID != nil {
		b.Equals("user_id", *in.UserID)
	}
	if in.CategoryID != nil {
		b.EqualsOrUncategorized("category_id", *in.CategoryID)
	}
	return b.Search(in.Search).
		SortBy(in.SortBy).
		SortOrder(in.SortOrder).
		Page(in.Page).
		PerPage(in.PerPage).
		Build()
}
