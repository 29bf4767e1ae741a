// Package avatar issues client-direct upload URLs for profile pictures.
package avatar

import (
	"context"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/apperr"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/storage"
)

// allowed image content types
var allowed = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ObjectStore is the subset of the object store used for avatars.
type ObjectStore interface {
	CreateSignedUploadURL(ctx context.Context, key string, expires time.Duration) (*storage.SignedUpload, error)
}

// Upload is the response payload: the signed grant plus the object path.
type Upload struct {
	*storage.SignedUpload
	Path string `json:"path"`
}

type Service struct {
	store ObjectStore
	ttl   time.Duration
}

func NewService(store ObjectStore, ttl time.Duration) *Service {
	return &Service{store: store, ttl: ttl}
}

// Extension maps an allowed image content type to its file extension (without dot).
func Extension(fileType string) (string, bool) {
	ft := strings.ToLower(strings.TrimSpace(fileType))
	if !allowed[ft] {
		return "", false
	}
	m := mimetype.Lookup(ft)
	if m == nil {
		return "", false
	}
	return strings.TrimPrefix(m.Extension(), "."), true
}

// Path builds {identityID}/{random}.{ext}.
func Path(identityID, ext string) string {
	return identityID + "/" + uuid.NewString() + "." + ext
}

// CreateUploadURL validates fileType and requests a signed upload URL under the identity's folder.
func (s *Service) CreateUploadURL(ctx context.Context, identityID, fileType string) (*Upload, error) {
	ext, ok := Extension(fileType)
	if !ok {
		return nil, apperr.Invalid("Invalid file type. Allowed: image/jpeg, image/png, image/gif, image/webp")
	}
	path := Path(identityID, ext)
	up, err := s.store.CreateSignedUploadURL(ctx, path, s.ttl)
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, "create signed upload url", err)
	}
	return &Upload{SignedUpload: up, Path: path}, nil
}
