package listing

// Registry declares, per entity, which field names are eligible for
// exact-match filtering, free-text search, and sorting. It is the single
// source of truth keeping caller-supplied field names away from the storage
// query: a name not present here is silently ignored (filters) or replaced
// by the default (sort).
type Registry struct {
	Filterable  []string
	Searchable  []string
	Sortable    []string
	DefaultSort string
}

// IsFilterable reports whether the field accepts equality filters.
func (r Registry) IsFilterable(field string) bool {
	return contains(r.Filterable, field)
}

// IsSortable reports whether the field may be used as a sort key.
func (r Registry) IsSortable(field string) bool {
	return contains(r.Sortable, field)
}

// SearchColumns returns the ordered set of columns scanned by the
// free-text search predicate.
func (r Registry) SearchColumns() []string {
	return append([]string(nil), r.Searchable...)
}

// DefaultSortField returns the sort key used when the requested one is
// unknown or absent.
func (r Registry) DefaultSortField() string {
	return r.DefaultSort
}

func contains(fields []string, field string) bool {
	for _, candidate := range fields {
		if candidate == field {
			return true
		}
	}
	return false
}
