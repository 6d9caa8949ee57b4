package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	imagesvc "github.com/stockpix/stockpix-backend/internal/images"
	"github.com/stockpix/stockpix-backend/pkg/enums"
	"github.com/stockpix/stockpix-backend/pkg/listing"
)

type stubImageService struct {
	page       *listing.Page[imagesvc.ImageDTO]
	dto        *imagesvc.ImageDTO
	err        error
	lastList   imagesvc.ListImagesInput
	lastCreate imagesvc.CreateImageInput
	lastUpdate imagesvc.UpdateImageInput
	lastDelete uuid.UUID
}

func (s *stubImageService) ListImages(ctx context.Context, input imagesvc.ListImagesInput) (*listing.Page[imagesvc.ImageDTO], error) {
	s.lastList = input
	if s.page == nil {
		page := listing.NewPage([]imagesvc.ImageDTO{}, 0, imagesvc.ListImagesInput{}.Plan())
		return &page, s.err
	}
	return s.page, s.err
}

func (s *stubImageService) CreateImage(ctx context.Context, input imagesvc.CreateImageInput) (*imagesvc.ImageDTO, error) {
	s.lastCreate = input
	return s.dto, s.err
}

func (s *stubImageService) UpdateImage(ctx context.Context, input imagesvc.UpdateImageInput) (*imagesvc.ImageDTO, error) {
	s.lastUpdate = input
	return s.dto, s.err
}

func (s *stubImageService) DeleteImage(ctx context.Context, id uuid.UUID) error {
	s.lastDelete = id
	return s.err
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := io.Copy(part, strings.NewReader("fake image bytes")); err != nil {
			t.Fatalf("copy file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func decimalFromString(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", raw, err)
	}
	return value
}

func TestListImagesDefaults(t *testing.T) {
	svc := &stubImageService{}
	handler := ListImages(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastList.Page != listing.DefaultPage || svc.lastList.PerPage != listing.DefaultPerPage {
		t.Fatalf("expected default pagination, got %d/%d", svc.lastList.Page, svc.lastList.PerPage)
	}
	if svc.lastList.Status != nil || svc.lastList.UserID != nil {
		t.Fatal("expected no filters by default")
	}
}

func TestListImagesParsesFilters(t *testing.T) {
	svc := &stubImageService{}
	handler := ListImages(svc, nil)

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet,
		"/api/images?status=Approved&user_id="+userID.String()+"&category_id=3&search=sunset&sort_by=price&sort_order=asc&page=2&per_page=25", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	in := svc.lastList
	if in.Status == nil || *in.Status != enums.ImageStatusApproved {
		t.Fatalf("expected status filter, got %v", in.Status)
	}
	if in.UserID == nil || *in.UserID != userID {
		t.Fatalf("expected user filter, got %v", in.UserID)
	}
	if in.CategoryID == nil || *in.CategoryID != 3 {
		t.Fatalf("expected category filter, got %v", in.CategoryID)
	}
	if in.Search != "sunset" || in.SortBy != "price" || in.SortOrder != listing.SortAsc {
		t.Fatalf("unexpected search/sort: %+v", in)
	}
	if in.Page != 2 || in.PerPage != 25 {
		t.Fatalf("unexpected pagination: %d/%d", in.Page, in.PerPage)
	}
}

func TestListImagesRejectsBadStatus(t *testing.T) {
	handler := ListImages(&stubImageService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/images?status=published", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestListImagesRejectsPerPageBeyondCap(t *testing.T) {
	handler := ListImages(&stubImageService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/images?per_page=1000", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestListImagesIgnoresBadUserID(t *testing.T) {
	svc := &stubImageService{}
	handler := ListImages(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/images?user_id=not-a-uuid", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastList.UserID != nil {
		t.Fatal("expected malformed user_id to be dropped")
	}
}

func TestCreateImageRequiresFile(t *testing.T) {
	handler := CreateImage(&stubImageService{}, 0, nil)

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Sunset",
		"price":   "12.50",
		"user_id": uuid.NewString(),
	}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCreateImageSuccess(t *testing.T) {
	svc := &stubImageService{dto: &imagesvc.ImageDTO{Title: "Sunset"}}
	handler := CreateImage(svc, 0, nil)

	userID := uuid.New()
	body, contentType := multipartBody(t, map[string]string{
		"title":       "Sunset",
		"price":       "12.50",
		"user_id":     userID.String(),
		"tags":        "beach,sun",
		"status":      "Pending",
		"description": "golden hour",
	}, "image", "sunset.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	in := svc.lastCreate
	if in.Title != "Sunset" || in.UserID != userID || in.Tags != "beach,sun" {
		t.Fatalf("unexpected input: %+v", in)
	}
	if !in.Price.Equal(decimalFromString(t, "12.50")) {
		t.Fatalf("unexpected price: %s", in.Price)
	}
	if in.Status == nil || *in.Status != enums.ImageStatusPending {
		t.Fatalf("expected pending status, got %v", in.Status)
	}
	if in.Header == nil || in.Header.Filename != "sunset.jpg" {
		t.Fatal("expected file header forwarded")
	}
}

func TestCreateImageRejectsBadPrice(t *testing.T) {
	handler := CreateImage(&stubImageService{}, 0, nil)

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Sunset",
		"price":   "not-a-number",
		"user_id": uuid.NewString(),
	}, "image", "sunset.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUpdateImageOnlySentFieldsChange(t *testing.T) {
	svc := &stubImageService{dto: &imagesvc.ImageDTO{}}
	handler := UpdateImage(svc, 0, nil)

	id := uuid.New()
	body, contentType := multipartBody(t, map[string]string{
		"id":    id.String(),
		"title": "New Title",
	}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/images/update", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	in := svc.lastUpdate
	if in.ID != id {
		t.Fatalf("expected id %s got %s", id, in.ID)
	}
	if in.Title == nil || *in.Title != "New Title" {
		t.Fatalf("expected title set, got %v", in.Title)
	}
	if in.Price != nil || in.Tags != nil || in.Status != nil || in.File != nil {
		t.Fatal("expected absent fields to stay nil")
	}
}

func TestDeleteImageRejectsBadID(t *testing.T) {
	handler := DeleteImage(&stubImageService{}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/images", bytes.NewReader([]byte(`{"id":"nope"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestDeleteImageForwardsID(t *testing.T) {
	svc := &stubImageService{}
	handler := DeleteImage(svc, nil)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/images", bytes.NewReader([]byte(`{"id":"`+id.String()+`"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastDelete != id {
		t.Fatalf("expected id %s got %s", id, svc.lastDelete)
	}
	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
}
