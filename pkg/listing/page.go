package listing

// Page is one page of a listing result together with its pagination frame.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// NewPage assembles a page from the fetched rows and the pre-pagination
// total. TotalPages is the ceiling of total over the page size.
func NewPage[T any](items []T, total int64, plan Plan) Page[T] {
	if items == nil {
		items = []T{}
	}
	perPage := plan.PerPage()
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       plan.Page(),
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}
