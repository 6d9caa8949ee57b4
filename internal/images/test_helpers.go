package image

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockpix/stockpix-backend/pkg/db/models"
	"github.com/stockpix/stockpix-backend/pkg/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Image{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func mustCreateTestUser(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Repo Tester",
		Email:        fmt.Sprintf("spx_test_%s@example.com", uuid.NewString()),
		Username:     "tester_" + uuid.NewString()[:8],
		PasswordHash: "hash",
		Role:         "user",
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func testUpload(t *testing.T, filename, content string) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(4 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	t.Cleanup(func() { _ = file.Close() })
	return file, header
}

// fakeFiles satisfies FileStore without touching disk.
type fakeFiles struct {
	counter int
	saved   []string
	deleted []string
	saveErr error
}

func (f *fakeFiles) Save(_ multipart.File, header *multipart.FileHeader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.counter++
	path := fmt.Sprintf("images/%d_%s", f.counter, header.Filename)
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeFiles) Delete(relative string) error {
	f.deleted = append(f.deleted, relative)
	return nil
}

func (f *fakeFiles) PublicURL(relative string) *string {
	if relative == "" {
		return nil
	}
	url := "/storage/" + relative
	return &url
}

func newTestService(t *testing.T, tx *gorm.DB) (Service, *fakeFiles) {
	t.Helper()
	files := &fakeFiles{}
	logg := logger.New(logger.Options{ServiceName: "test"})
	return NewService(NewRepository(tx), files, logg), files
}
