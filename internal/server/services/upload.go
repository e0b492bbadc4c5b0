package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
	"github.com/instantbranding/brandkit/internal/server/storage"
)

const (
	MaxUploadSize       = 10 << 20
	DefaultUploadExpiry = 300 * time.Second
	MaxUploadExpiry     = time.Hour
)

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// UploadRequest describes a file the client is about to upload.
type UploadRequest struct {
	Provider    string
	UserID      string
	Filename    string
	ContentType string
	FileSize    *int64
	ExpiresIn   time.Duration
}

// UploadCredential is a one-shot presigned PUT.
type UploadCredential struct {
	UploadURL   string `json:"upload_url"`
	ObjectKey   string `json:"object_key"`
	PublicURL   string `json:"public_url"`
	ContentType string `json:"content_type"`
	ExpiresIn   int    `json:"expires_in"`
	Provider    string `json:"provider"`
}

type UploadService struct {
	presigners    map[string]storage.Presigner
	defaultExpiry time.Duration
	now           func() time.Time
	log           logging.Logger
}

// NewUploadService takes the configured presigners keyed by provider name.
func NewUploadService(presigners map[string]storage.Presigner, defaultExpiry time.Duration, log logging.Logger) *UploadService {
	if defaultExpiry <= 0 {
		defaultExpiry = DefaultUploadExpiry
	}
	return &UploadService{
		presigners:    presigners,
		defaultExpiry: defaultExpiry,
		now:           time.Now,
		log:           log.With("module", "uploads"),
	}
}

// IssueCredential validates the request in a fixed order (presence, type,
// size, requester) and presigns an object key under the requester.
func (s *UploadService) IssueCredential(ctx context.Context, r UploadRequest) (*UploadCredential, error) {
	r.Filename = strings.TrimSpace(r.Filename)
	r.ContentType = strings.ToLower(strings.TrimSpace(r.ContentType))

	if r.Filename == "" || r.ContentType == "" {
		ve := &common.ValidationError{Message: "filename and content type are required", Fields: map[string]string{}}
		if r.Filename == "" {
			ve.Fields["filename"] = "is required"
		}
		if r.ContentType == "" {
			ve.Fields["content_type"] = "is required"
		}
		return nil, ve
	}
	if !allowedContentTypes[r.ContentType] {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidFileType, r.ContentType)
	}
	if r.FileSize != nil && *r.FileSize < 0 {
		return nil, common.NewValidationError("file_size", "must not be negative")
	}
	if r.FileSize != nil && *r.FileSize > MaxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", common.ErrFileTooLarge, *r.FileSize, MaxUploadSize)
	}
	if r.UserID == "" {
		return nil, common.ErrAuthenticationRequired
	}

	p, ok := s.presigners[r.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: storage provider %q not configured", common.ErrInternal, r.Provider)
	}

	expires := r.ExpiresIn
	if expires <= 0 {
		expires = s.defaultExpiry
	}
	if expires > MaxUploadExpiry {
		expires = MaxUploadExpiry
	}

	key := storage.ObjectKey(r.UserID, r.Filename, s.now().UTC())
	url, err := p.PresignPut(ctx, key, r.ContentType, expires)
	if err != nil {
		s.log.Error(ctx, "presign failed", "provider", r.Provider, "error", err)
		return nil, fmt.Errorf("%w: presign: %v", common.ErrUpstream, err)
	}

	return &UploadCredential{
		UploadURL:   url,
		ObjectKey:   key,
		PublicURL:   p.PublicURL(key),
		ContentType: r.ContentType,
		ExpiresIn:   int(expires / time.Second),
		Provider:    r.Provider,
	}, nil
}
