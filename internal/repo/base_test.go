package repo

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockpix/stockpix-backend/pkg/listing"
)

type note struct {
	ID        int64 `gorm:"primaryKey"`
	Title     string
	Rank      int
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

func TestNewBaseStoresConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if base.db != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil {
		t.Fatalf("expected non-nil DB when context provided")
	}
	if withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	withoutCtx := base.DB(nil)
	if withoutCtx != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func seedNotes(t *testing.T, db *gorm.DB, count int) {
	t.Helper()
	if err := db.AutoMigrate(&note{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for i := 1; i <= count; i++ {
		n := note{Title: "note", Rank: i}
		if err := db.Create(&n).Error; err != nil {
			t.Fatalf("seed note %d: %v", i, err)
		}
	}
}

func TestPaginateCountsBeforePaging(t *testing.T) {
	db := newTestDB(t)
	seedNotes(t, db, 25)

	registry := listing.Registry{
		Sortable:    []string{"rank"},
		DefaultSort: "rank",
	}
	plan := listing.NewBuilder(registry).
		SortBy("rank").
		SortOrder(listing.SortAsc).
		Page(3).
		PerPage(10).
		Build()

	page, err := Paginate[note](db, plan)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}

	if page.Total != 25 {
		t.Fatalf("expected total 25, got %d", page.Total)
	}
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.TotalPages)
	}
	if len(page.Items) != 5 {
		t.Fatalf("expected 5 items on the last page, got %d", len(page.Items))
	}
	if page.Items[0].Rank != 21 {
		t.Fatalf("expected last page to start at rank 21, got %d", page.Items[0].Rank)
	}
}

func TestPaginateEmptyResult(t *testing.T) {
	db := newTestDB(t)
	seedNotes(t, db, 0)

	registry := listing.Registry{Sortable: []string{"rank"}, DefaultSort: "rank"}
	plan := listing.NewBuilder(registry).Build()

	page, err := Paginate[note](db, plan)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if page.Total != 0 || page.TotalPages != 0 {
		t.Fatalf("expected empty frame, got total=%d pages=%d", page.Total, page.TotalPages)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("expected empty non-nil items")
	}
}
