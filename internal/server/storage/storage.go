// Package storage issues presigned PUT URLs against S3-compatible object
// stores. Two providers share one implementation: AWS S3 (or MinIO) and
// Cloudflare R2.
package storage

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider names accepted by the upload endpoints.
const (
	ProviderS3 = "s3"
	ProviderR2 = "r2"
)

// Presigner issues time-boxed upload URLs for a single bucket.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	PublicURL(key string) string
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxNameLen = 100

// SanitizeFilename reduces a client supplied filename to a safe object key
// segment: no directories, only [A-Za-z0-9._-], bounded length.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if len(name) > maxNameLen {
		name = name[len(name)-maxNameLen:]
	}
	if name == "" {
		return "file"
	}
	return name
}

// ObjectKey namespaces an upload under the owning user:
// users/<userID>/<yyyy>/<mm>/<uuid>-<filename>.
func ObjectKey(userID, filename string, now time.Time) string {
	return fmt.Sprintf("users/%s/%04d/%02d/%s-%s",
		SanitizeFilename(userID), now.Year(), int(now.Month()), uuid.New(), SanitizeFilename(filename))
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
