package user

import (
	"github.com/google/uuid"

	"github.com/stockpix/stockpix-backend/pkg/enums"
	"github.com/stockpix/stockpix-backend/pkg/listing"
)

// Registry declares which user fields the admin listing may filter, search,
// and sort on.
var Registry = listing.Registry{
	Filterable:  []string{"role", "subscription", "status"},
	Searchable:  []string{"name", "email", "username"},
	Sortable:    []string{"id", "name", "email", "username", "role", "subscription", "status", "created_at"},
	DefaultSort: "id",
}

// ListUsersInput captures the normalized admin listing parameters. ActorID
// is always excluded from results so operators never act on their own row
// by accident.
type ListUsersInput struct {
	ActorID      uuid.UUID
	Role         string
	Subscription *enums.SubscriptionTier
	Status       *enums.UserStatus
	Deleted      listing.DeletedScope
	Search       string
	SortBy       string
	SortOrder    listing.SortOrder
	Page         int
	PerPage      int
}

// Plan turns the input into an executable listing plan.
func (in ListUsersInput) Plan() listing.Plan {
	b := listing.NewBuilder(Registry).
		Equals("role", in.Role)
	if in.Subscription != nil {
		b.Equals("subscription", in.Subscription.String())
	}
	if in.Status != nil {
		b.Equals("status", in.Status.String())
	}
	if in.ActorID != uuid.Nil {
		b.ExcludeID("id", in.ActorID)
	}
	return b.Deleted(in.Deleted).
		Search(in.Search).
		SortBy(in.SortBy).
		SortOrder(in.SortOrder).
		Page(in.Page).
		PerPage(in.PerPage).
		Build()
}
