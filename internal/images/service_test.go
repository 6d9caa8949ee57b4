package image

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpix/stockpix-backend/pkg/db/models"
	"github.com/stockpix/stockpix-backend/pkg/enums"
	pkgerrors "github.com/stockpix/stockpix-backend/pkg/errors"
	"github.com/stockpix/stockpix-backend/pkg/listing"
)

func createImage(t *testing.T, svc Service, userID uuid.UUID, title string, mutate func(*CreateImageInput)) *ImageDTO {
	t.Helper()
	file, header := testUpload(t, title+".jpg", "jpeg-bytes")
	input := CreateImageInput{
		File:   file,
		Header: header,
		Title:  title,
		Price:  decimal.NewFromFloat(9.99),
		UserID: userID,
	}
	if mutate != nil {
		mutate(&input)
	}
	dto, err := svc.CreateImage(context.Background(), input)
	require.NoError(t, err)
	return dto
}

func TestCreateImageValidation(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestService(t, db)
	user := mustCreateTestUser(t, db)
	ctx := context.Background()

	file, header := testUpload(t, "a.jpg", "x")

	_, err := svc.CreateImage(ctx, CreateImageInput{File: file, Header: header, UserID: user.ID})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateImage(ctx, CreateImageInput{Title: "no file", UserID: user.ID})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	file, header = testUpload(t, "b.jpg", "x")
	_, err = svc.CreateImage(ctx, CreateImageInput{
		File: file, Header: header, Title: "neg", UserID: user.ID,
		Price: decimal.NewFromInt(-1),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateImageDefaultsToPending(t *testing.T) {
	db := openTestDB(t)
	svc, files := newTestService(t, db)
	user := mustCreateTestUser(t, db)

	dto := createImage(t, svc, user.ID, "beach", nil)

	assert.Equal(t, enums.ImageStatusPending.String(), dto.Status)
	require.NotNil(t, dto.ImageURL)
	assert.Equal(t, "/storage/"+files.saved[0], *dto.ImageURL)
}

func TestListImagesPaginationBounds(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestService(t, db)
	user := mustCreateTestUser(t, db)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		createImage(t, svc, user.ID, uuid.NewString()[:8], nil)
	}

	page, err := svc.ListImages(ctx, ListImagesInput{Page: 2, PerPage: 5})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 3, page.TotalPages)

	// Out-of-range inputs fall back to defaults rather than erroring.
	page, err = svc.ListImages(ctx, ListImagesInput{Page: -1, PerPage: 100000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, listing.MaxPerPage, page.PerPage)
}

func TestListImagesSortFallback(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestService(t, db)
	user := mustCreateTestUser(t, db)
	ctx := context.Background()

	cheap := createImage(t, svc, user.ID, "cheap", func(in *CreateImageInput) {
		in.Price = decimal.NewFromInt(1)
	})
	pricey := createImage(t, svc, user.ID, "pricey", func(in *CreateImageInput) {
		in.Price = decimal.NewFromInt(50)
	})

	page, err := svc.ListImages(ctx, ListImagesInput{SortBy: "price", SortOrder: listing.SortAsc})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, cheap.ID, page.Items[0].ID)
	assert.Equal(t, pricey.ID, page.Items[1].ID)

	// Unknown sort keys silently use the default ordering.
	page, err = svc.ListImages(ctx, ListImagesInput{SortBy: "image_path"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestListImagesFilters(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestService(t, db)
	alice := mustCreateTestUser(t, db)
	bob := mustCreateTestUser(t, db)
	ctx := context.Background()

	approved := enums.ImageStatusApproved
	createImage(t, svc, alice.ID, "alpha", func(in *CreateImageInput) { in.Status = &approved })
	createImage(t, svc, alice.ID, "beta", nil)
	createImage(t, svc, bob.ID, "gamma", func(in *CreateImageInput) { in.Status = &approved })

	page, err := svc.ListImages(ctx, ListImagesInput{Status: &approved})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.ListImages(ctx, ListImagesInput{UserID: &alice.ID})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.ListImages(ctx, ListImagesInput{Status: &approved, UserID: &bob.ID})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "gamma", page.Items[0].Title)
}

func TestListImagesCategoryZeroMeansUncategorized(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestService(t, db)
	user := mustCreateTestUser(t, db)
	ctx := context.Background()

	zero := int64(0)
	seven := int64(7)
	createImage(t, svc, user.ID, "no-category", nil)
	createImage(t, svc, user.ID, "zero-category", func(in *CreateImageInput) { in.CategoryID = &zero })
	createImage(t, svc, user.ID, "seven-category", func(in *CreateImageInput) { in.CategoryID = &seven })

	page, err := svc.ListImages(ctx, ListImagesInput{CategoryID: &zero})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.ListImages(ctx, ListImagesInput{CategoryID: &seven})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "seven-category", page.Items[0].Title)
}

func TestListImagesSearch(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestService(t, db)
	user := mustCreateTestUser(t, db)
	ctx := context.Background()

	createImage(t, svc, user.ID, "Sunset Beach", func(in *CreateImageInput) { in.Tags = "ocean,gold" })
	createImage(t, svc, user.ID, "Mountain", func(in *CreateImageInput) { in.Description = "a sunset over peaks" })
	createImage(t, svc, user.ID, "City", nil)

	page, err := svc.ListImages(ctx, ListImagesInput{Search: "SUNSET"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.ListImages(ctx, ListImagesInput{Search: "ocean"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Sunset Beach", page.Items[0].Title)
}

func TestUpdateImagePartial(t *testing.T) {
	db := openTestDB(t)
	svc, files := newTestService(t, db)
	user := mustCreateTestUser(t, db)
	ctx := context.Background()

	dto := createImage(t, svc, user.ID, "original", func(in *CreateImageInput) {
		in.Tags = "keep-me"
		in.Description = "keep this too"
	})

	newPrice := decimal.NewFromFloat(19.50)
	updated, err := svc.UpdateImage(ctx, UpdateImageInput{ID: dto.ID, Price: &newPrice})
	require.NoError(t, err)

	assert.True(t, updated.Price.Equal(newPrice))
	assert.Equal(t, "original", updated.Title)
	assert.Equal(t, "keep-me", updated.Tags)
	assert.Equal(t, "keep this too", updated.Description)
	assert.Empty(t, files.deleted)
}

func TestUpdateImageReplacesFile(t *testing.T) {
	db := openTestDB(t)
	svc, files := newTestService(t, db)
	user := mustCreateTestUser(t, db)
	ctx := context.Background()

	dto := createImage(t, svc, user.ID, "original", nil)
	firstPath := files.saved[0]

	file, header := testUpload(t, "replacement.jpg", "new-bytes")
	updated, err := svc.UpdateImage(ctx, UpdateImageInput{ID: dto.ID, File: file, Header: header})
	require.NoError(t, err)

	require.NotNil(t, updated.ImageURL)
	assert.NotEqual(t, "/storage/"+firstPath, *updated.ImageURL)
	assert.Equal(t, []string{firstPath}, files.deleted)
}

func TestUpdateImageNotFound(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestService(t, db)

	title := "anything"
	_, err := svc.UpdateImage(context.Background(), UpdateImageInput{ID: uuid.New(), Title: &title})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDeleteImageHidesFromListing(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestService(t, db)
	user := mustCreateTestUser(t, db)
	ctx := context.Background()

	dto := createImage(t, svc, user.ID, "doomed", nil)

	require.NoError(t, svc.DeleteImage(ctx, dto.ID))

	page, err := svc.ListImages(ctx, ListImagesInput{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	// The row survives as a soft-deleted record.
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Image{}).Where("deleted_at IS NOT NULL").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	err = svc.DeleteImage(ctx, dto.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

// Mirrors the full lifecycle a contributor walks through: upload, browse,
// reprice, then take the listing down.
func TestImageLifecycle(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newTestService(t, db)
	user := mustCreateTestUser(t, db)
	ctx := context.Background()

	dto := createImage(t, svc, user.ID, "Sunset", func(in *CreateImageInput) {
		in.Tags = "sky,evening"
		in.Price = decimal.NewFromFloat(12.00)
	})

	page, err := svc.ListImages(ctx, ListImagesInput{Search: "sunset"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	price := decimal.NewFromFloat(8.50)
	updated, err := svc.UpdateImage(ctx, UpdateImageInput{ID: dto.ID, Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, "sky,evening", updated.Tags)

	require.NoError(t, svc.DeleteImage(ctx, dto.ID))

	page, err = svc.ListImages(ctx, ListImagesInput{Search: "sunset"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
