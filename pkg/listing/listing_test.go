package listing

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRegistry = Registry{
	Filterable:  []string{"status", "user_id", "category_id"},
	Searchable:  []string{"title", "tags", "description"},
	Sortable:    []string{"id", "title", "price", "created_at"},
	DefaultSort: "created_at",
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		raw     string
		want    SortOrder
		wantErr bool
	}{
		{raw: "", want: SortDesc},
		{raw: "asc", want: SortAsc},
		{raw: "desc", want: SortDesc},
		{raw: "ASC", wantErr: true},
		{raw: "sideways", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseSortOrder(tc.raw)
		if tc.wantErr {
			assert.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestParseDeletedScope(t *testing.T) {
	assert.Equal(t, DeletedOnly, ParseDeletedScope("1"))
	assert.Equal(t, DeletedAll, ParseDeletedScope("all"))
	assert.Equal(t, DeletedExclude, ParseDeletedScope(""))
	assert.Equal(t, DeletedExclude, ParseDeletedScope("0"))
	assert.Equal(t, DeletedExclude, ParseDeletedScope("yes"))
	assert.Equal(t, DeletedOnly, ParseDeletedScope(" 1 "))
}

func TestBuilderDefaults(t *testing.T) {
	plan := NewBuilder(testRegistry).Build()

	assert.Equal(t, DefaultPage, plan.Page())
	assert.Equal(t, DefaultPerPage, plan.PerPage())
	assert.Equal(t, 0, plan.Offset())
	assert.Equal(t, "created_at desc", plan.OrderClause())
}

func TestBuilderPagination(t *testing.T) {
	plan := NewBuilder(testRegistry).Page(3).PerPage(25).Build()
	assert.Equal(t, 3, plan.Page())
	assert.Equal(t, 25, plan.PerPage())
	assert.Equal(t, 50, plan.Offset())

	plan = NewBuilder(testRegistry).Page(0).PerPage(0).Build()
	assert.Equal(t, DefaultPage, plan.Page())
	assert.Equal(t, DefaultPerPage, plan.PerPage())

	plan = NewBuilder(testRegistry).Page(-4).PerPage(-1).Build()
	assert.Equal(t, DefaultPage, plan.Page())
	assert.Equal(t, DefaultPerPage, plan.PerPage())

	plan = NewBuilder(testRegistry).PerPage(5000).Build()
	assert.Equal(t, MaxPerPage, plan.PerPage())
}

func TestBuilderSortFallback(t *testing.T) {
	plan := NewBuilder(testRegistry).SortBy("price").SortOrder(SortAsc).Build()
	assert.Equal(t, "price asc", plan.OrderClause())

	// Unregistered keys fall back to the default without erroring.
	plan = NewBuilder(testRegistry).SortBy("password").Build()
	assert.Equal(t, "created_at desc", plan.OrderClause())

	plan = NewBuilder(testRegistry).SortBy("").Build()
	assert.Equal(t, "created_at desc", plan.OrderClause())
}

func TestBuilderFilterAllowList(t *testing.T) {
	plan := NewBuilder(testRegistry).
		Equals("status", "approved").
		Equals("role", "admin").
		Equals("status", "").
		Build()

	require.Len(t, plan.predicates, 1)
	assert.Equal(t, "status", plan.predicates[0].column)
	assert.Equal(t, predicateEquals, plan.predicates[0].kind)
}

func TestBuilderUncategorized(t *testing.T) {
	plan := NewBuilder(testRegistry).EqualsOrUncategorized("category_id", 0).Build()
	require.Len(t, plan.predicates, 1)
	assert.Equal(t, predicateNullOrZero, plan.predicates[0].kind)

	plan = NewBuilder(testRegistry).EqualsOrUncategorized("category_id", 7).Build()
	require.Len(t, plan.predicates, 1)
	assert.Equal(t, predicateEquals, plan.predicates[0].kind)
	assert.Equal(t, int64(7), plan.predicates[0].value)

	// Field still has to be registered.
	plan = NewBuilder(testRegistry).EqualsOrUncategorized("owner_id", 0).Build()
	assert.Empty(t, plan.predicates)
}

func TestBuilderExcludeID(t *testing.T) {
	plan := NewBuilder(testRegistry).ExcludeID("id", "abc-123").Build()
	require.Len(t, plan.predicates, 1)
	assert.Equal(t, predicateNotEquals, plan.predicates[0].kind)
}

func TestBuilderSearchNormalization(t *testing.T) {
	plan := NewBuilder(testRegistry).Search("  sunset  ").Build()
	assert.Equal(t, "sunset", plan.search)

	long := make([]byte, 0, MaxSearchLen*2)
	for i := 0; i < MaxSearchLen*2; i++ {
		long = append(long, 'a')
	}
	plan = NewBuilder(testRegistry).Search(string(long)).Build()
	assert.Len(t, plan.search, MaxSearchLen)
}

func TestBuilderSearchCapCountsRunes(t *testing.T) {
	wide := strings.Repeat("日", MaxSearchLen+5)
	plan := NewBuilder(testRegistry).Search(wide).Build()

	assert.True(t, utf8.ValidString(plan.search))
	assert.Equal(t, MaxSearchLen, utf8.RuneCountInString(plan.search))

	short := strings.Repeat("é", 3)
	plan = NewBuilder(testRegistry).Search(short).Build()
	assert.Equal(t, short, plan.search)
}

func TestRegistry(t *testing.T) {
	assert.True(t, testRegistry.IsFilterable("status"))
	assert.False(t, testRegistry.IsFilterable("title"))
	assert.True(t, testRegistry.IsSortable("price"))
	assert.False(t, testRegistry.IsSortable("tags"))
	assert.Equal(t, "created_at", testRegistry.DefaultSortField())

	cols := testRegistry.SearchColumns()
	cols[0] = "mutated"
	assert.Equal(t, "title", testRegistry.SearchColumns()[0])
}

func TestNewPage(t *testing.T) {
	plan := NewBuilder(testRegistry).Page(2).PerPage(10).Build()
	page := NewPage([]string{"a", "b"}, 42, plan)

	assert.Equal(t, int64(42), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PerPage)
	assert.Equal(t, 5, page.TotalPages)

	empty := NewPage[string](nil, 0, plan)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}
