package listing

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	// DefaultPage is used when a page number is not provided.
	DefaultPage = 1
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 10
	// MaxPerPage caps how many rows any list query can request.
	MaxPerPage = 100
	// MaxSearchLen bounds the free-text search term.
	MaxSearchLen = 100
)

// SortOrder is the direction of the resolved sort key.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder validates a raw sort direction. Empty input falls back to
// descending; anything else must match exactly.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch raw {
	case "":
		return SortDesc, nil
	case string(SortAsc):
		return SortAsc, nil
	case string(SortDesc):
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort order %q", raw)
}

// DeletedScope selects which soft-delete partition a listing sees.
type DeletedScope int

const (
	// DeletedExclude is the default scope: live rows only.
	DeletedExclude DeletedScope = iota
	// DeletedOnly returns soft-deleted rows exclusively.
	DeletedOnly
	// DeletedAll returns live and soft-deleted rows together.
	DeletedAll
)

// ParseDeletedScope maps the wire flag onto a scope. Unknown values fall
// back to the default scope rather than erroring.
func ParseDeletedScope(raw string) DeletedScope {
	switch strings.TrimSpace(raw) {
	case "1":
		return DeletedOnly
	case "all":
		return DeletedAll
	}
	return DeletedExclude
}

type predicateKind int

const (
	predicateEquals predicateKind = iota
	predicateNotEquals
	predicateNullOrZero
)

// predicate is one member of the closed condition set a Plan can carry.
// Keeping the kinds enumerated (instead of generic string-keyed dispatch)
// closes off injection by construction: columns only ever come from a
// Registry or from compiled-in base predicates.
type predicate struct {
	kind   predicateKind
	column string
	value  any
}

// Plan is a fully normalized listing query: equality predicates, an
// optional search disjunction, one sort key and direction, pagination
// bounds, and the soft-delete scope. It is independent of any request
// shape; repositories apply it to a *gorm.DB.
type Plan struct {
	predicates    []predicate
	search        string
	searchColumns []string
	sortBy        string
	sortOrder     SortOrder
	page          int
	perPage       int
	deleted       DeletedScope
}

// Builder accumulates raw request values into a Plan, consulting a Registry
// so unknown fields are dropped and unknown sort keys fall back silently.
type Builder struct {
	registry Registry
	plan     Plan
}

// NewBuilder starts a plan with the registry defaults applied.
func NewBuilder(registry Registry) *Builder {
	return &Builder{
		registry: registry,
		plan: Plan{
			searchColumns: registry.SearchColumns(),
			sortBy:        registry.DefaultSortField(),
			sortOrder:     SortDesc,
			page:          DefaultPage,
			perPage:       DefaultPerPage,
		},
	}
}

// Equals adds an exact-match predicate when the field is registered as
// filterable and the value is non-empty. Anything else is ignored.
func (b *Builder) Equals(field string, value any) *Builder {
	if !b.registry.IsFilterable(field) || isEmpty(value) {
		return b
	}
	b.plan.predicates = append(b.plan.predicates, predicate{
		kind:   predicateEquals,
		column: field,
		value:  value,
	})
	return b
}

// EqualsOrUncategorized handles category-style fields where zero and NULL
// mean the same "uncategorized" bucket: a zero value expands to
// (col IS NULL OR col = 0), anything else is a plain equality.
func (b *Builder) EqualsOrUncategorized(field string, value int64) *Builder {
	if !b.registry.IsFilterable(field) {
		return b
	}
	if value == 0 {
		b.plan.predicates = append(b.plan.predicates, predicate{
			kind:   predicateNullOrZero,
			column: field,
		})
		return b
	}
	return b.Equals(field, value)
}

// ExcludeID appends a base predicate excluding one row, e.g. the requesting
// actor's own record. It bypasses the registry on purpose: the column is
// compiled in by the caller, never taken from request input.
func (b *Builder) ExcludeID(column string, value any) *Builder {
	b.plan.predicates = append(b.plan.predicates, predicate{
		kind:   predicateNotEquals,
		column: column,
		value:  value,
	})
	return b
}

// Search sets the free-text term, trimmed and capped at MaxSearchLen runes.
// The cap counts runes so a multi-byte character is never split into
// invalid UTF-8.
func (b *Builder) Search(term string) *Builder {
	b.plan.search = truncateRunes(strings.TrimSpace(term), MaxSearchLen)
	return b
}

func truncateRunes(s string, max int) string {
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// SortBy resolves the sort key, silently substituting the registry default
// for anything not registered as sortable.
func (b *Builder) SortBy(field string) *Builder {
	if b.registry.IsSortable(field) {
		b.plan.sortBy = field
	}
	return b
}

// SortOrder sets the sort direction.
func (b *Builder) SortOrder(order SortOrder) *Builder {
	if order == SortAsc || order == SortDesc {
		b.plan.sortOrder = order
	}
	return b
}

// Page sets the 1-based page number, clamping invalid input to the default.
func (b *Builder) Page(page int) *Builder {
	if page >= 1 {
		b.plan.page = page
	}
	return b
}

// PerPage sets the page size within [1, MaxPerPage].
func (b *Builder) PerPage(perPage int) *Builder {
	switch {
	case perPage < 1:
		b.plan.perPage = DefaultPerPage
	case perPage > MaxPerPage:
		b.plan.perPage = MaxPerPage
	default:
		b.plan.perPage = perPage
	}
	return b
}

// Deleted sets the soft-delete visibility scope.
func (b *Builder) Deleted(scope DeletedScope) *Builder {
	b.plan.deleted = scope
	return b
}

// Build finalizes the plan.
func (b *Builder) Build() Plan {
	return b.plan
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

// Conditions applies the soft-delete scope, all predicates, and the search
// disjunction to the query. Sorting and pagination are applied separately
// so the same conditions can drive the pre-pagination count.
func (p Plan) Conditions(db *gorm.DB) *gorm.DB {
	switch p.deleted {
	case DeletedOnly:
		db = db.Unscoped().Where("deleted_at IS NOT NULL")
	case DeletedAll:
		db = db.Unscoped()
	}

	for _, pred := range p.predicates {
		switch pred.kind {
		case predicateEquals:
			db = db.Where(pred.column+" = ?", pred.value)
		case predicateNotEquals:
			db = db.Where(pred.column+" <> ?", pred.value)
		case predicateNullOrZero:
			db = db.Where("(" + pred.column + " IS NULL OR " + pred.column + " = 0)")
		}
	}

	if p.search != "" && len(p.searchColumns) > 0 {
		pattern := "%" + strings.ToLower(p.search) + "%"
		clauses := make([]string, 0, len(p.searchColumns))
		args := make([]any, 0, len(p.searchColumns))
		for _, col := range p.searchColumns {
			clauses = append(clauses, "LOWER("+col+") LIKE ?")
			args = append(args, pattern)
		}
		db = db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	return db
}

// OrderClause returns the resolved "column direction" ordering expression.
func (p Plan) OrderClause() string {
	return p.sortBy + " " + string(p.sortOrder)
}

// Page returns the 1-based page number.
func (p Plan) Page() int {
	return p.page
}

// PerPage returns the resolved page size.
func (p Plan) PerPage() int {
	return p.perPage
}

// Offset returns the row offset for the current page.
func (p Plan) Offset() int {
	return (p.page - 1) * p.perPage
}
