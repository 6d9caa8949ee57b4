package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/stockpix/stockpix-backend/pkg/config"
)

// Local persists uploads under a directory served as static content by the
// fronting web server. Only paths relative to that directory are handed back
// to callers; PublicURL turns a stored path into its browsable form.
type Local struct {
	cfg config.StorageConfig
	now func() time.Time
}

// NewLocal builds a store rooted at the configured public directory.
func NewLocal(cfg config.StorageConfig) *Local {
	return &Local{cfg: cfg, now: time.Now}
}

// MaxUploadBytes returns the configured upload ceiling in bytes.
func (l *Local) MaxUploadBytes() int64 {
	return int64(l.cfg.MaxUploadMB) << 20
}

// Save writes the uploaded file under images/ with a timestamp prefix so
// repeated uploads of the same filename never collide. It returns the path
// relative to the public directory.
func (l *Local) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	name := sanitizeFilename(header.Filename)
	if name == "" {
		return "", fmt.Errorf("upload has no usable filename")
	}

	relative := path.Join("images", fmt.Sprintf("%d_%s", l.now().Unix(), name))
	target := filepath.Join(l.cfg.PublicDir, filepath.FromSlash(relative))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("creating storage dir: %w", err)
	}

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("writing file: %w", err)
	}

	return relative, nil
}

// Delete removes a previously stored file. A missing file is not an error;
// the row it backed may outlive a manually pruned disk.
func (l *Local) Delete(relative string) error {
	if relative == "" {
		return nil
	}
	target := filepath.Join(l.cfg.PublicDir, filepath.FromSlash(relative))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

// PublicURL maps a stored relative path onto the public base. Nil when the
// entity has no stored file.
func (l *Local) PublicURL(relative string) *string {
	if relative == "" {
		return nil
	}
	url := strings.TrimSuffix(l.cfg.PublicBaseURL, "/") + "/" + strings.TrimPrefix(relative, "/")
	return &url
}

// sanitizeFilename strips any path components and characters outside a
// conservative allow-list.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		return ""
	}
	return cleaned
}
