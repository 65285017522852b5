// Package media stores tour images. The interface keeps the storefront
// independent of where blobs land; FSStore writes to local disk and a
// CDN-backed implementation can replace it without touching handlers.
package media

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"toursales/internal/platform/config"
	dErrors "toursales/pkg/domain-errors"
)

// ImageStore accepts a binary blob and returns a stable URL.
type ImageStore interface {
	Save(ctx context.Context, data []byte) (string, error)
}

// FSStore keeps images on the local filesystem under random public IDs.
type FSStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewFSStore(cfg config.MediaConfig) *FSStore {
	return &FSStore{
		dir:      cfg.Dir,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		maxBytes: cfg.MaxBytes,
	}
}

// Save validates the blob (sniffed image content type, size ceiling) and
// writes it under a UUID filename. The declared content type of the upload is
// ignored; only the sniffed bytes count.
func (s *FSStore) Save(_ context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", dErrors.New(dErrors.CodeBadRequest, "image file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("image exceeds the %d MB limit", s.maxBytes>>20))
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", dErrors.New(dErrors.CodeBadRequest, "file must be a valid image (JPEG, PNG, GIF or WebP)")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store image")
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store image")
	}
	return s.baseURL + "/" + name, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}
