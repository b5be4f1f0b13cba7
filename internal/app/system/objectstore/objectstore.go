// internal/app/system/objectstore/objectstore.go
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// DefaultPresignExpiry is how long a presigned GET URL stays valid.
const DefaultPresignExpiry = 7 * 24 * time.Hour

// Store persists blobs and returns the URL they can be fetched from. The URL
// is opaque to callers.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	dotRuns     = regexp.MustCompile(`\.{2,}`)
)

// SafeName reduces a client file name to a storage-safe base name.
func SafeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = dotRuns.ReplaceAllString(name, ".")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}

// Key builds the key for a file attached to a bilan:
// bilans/{id}/{kind}/{name}-{rand}. The extension is kept last.
func Key(bilanID int64, kind, fileName string) string {
	name := SafeName(fileName)
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("bilans/%d/%s/%s-%s%s", bilanID, kind, base, uuid.New().String()[:8], ext)
}

// Blobs adapts a waffle storage backend to Store. Objects get the backend's
// public URL, or a presigned GET URL when the backend is private.
type Blobs struct {
	backend storage.Store
	presign bool
	expiry  time.Duration
}

// New wraps a backend whose objects are publicly reachable at URL(key).
// A backend without a public URL falls back to presigning.
func New(backend storage.Store) *Blobs {
	return &Blobs{backend: backend, expiry: DefaultPresignExpiry}
}

// NewPrivate wraps a backend whose objects are only reachable through
// presigned URLs valid for expiry. A non-positive expiry uses
// DefaultPresignExpiry.
func NewPrivate(backend storage.Store, expiry time.Duration) *Blobs {
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	return &Blobs{backend: backend, presign: true, expiry: expiry}
}

// Backend returns the wrapped storage backend.
func (b *Blobs) Backend() storage.Store { return b.backend }

// Put uploads data under key and returns the URL it is served from.
func (b *Blobs) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = storage.NormalizePath(key)
	if err := storage.ValidatePath(key); err != nil || key == "." {
		return "", fmt.Errorf("objectstore: key %q: %w", key, storage.ErrInvalidPath)
	}
	if err := b.backend.PutBytes(ctx, key, data, &storage.PutOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("objectstore: put %s: %w", key, err)
	}

	if !b.presign {
		if u := b.backend.URL(key); u != "" {
			return u, nil
		}
	}
	u, err := b.backend.PresignedURL(ctx, key, &storage.PresignOptions{Expires: b.expiry})
	if errors.Is(err, storage.ErrPresignNotSupported) {
		return "", fmt.Errorf("objectstore: %s backend has no URL for %s: %w", b.backend.Backend(), key, err)
	}
	if err != nil {
		return "", fmt.Errorf("objectstore: presign %s: %w", key, err)
	}
	return u, nil
}

// NewLocal stores objects under root and serves them under baseURL.
func NewLocal(root, baseURL string) (*Blobs, error) {
	local, err := storage.NewLocal(storage.LocalConfig{BasePath: root, BaseURL: baseURL})
	if err != nil {
		return nil, fmt.Errorf("objectstore: %w", err)
	}
	return New(local), nil
}

// S3Config configures NewS3. When PublicURL is set, Put returns
// PublicURL/prefix/key; otherwise it returns a presigned GET URL.
type S3Config struct {
	Region    string
	Bucket    string
	Prefix    string
	Endpoint  string // S3-compatible endpoints (MinIO, Scaleway); path-style
	PublicURL string
	Expiry    time.Duration
}

// NewS3 loads AWS credentials from the default chain.
func NewS3(ctx context.Context, cfg S3Config) (*Blobs, error) {
	s3, err := storage.NewS3(ctx, storage.S3Config{
		Bucket:       cfg.Bucket,
		Region:       cfg.Region,
		Endpoint:     cfg.Endpoint,
		UsePathStyle: cfg.Endpoint != "",
		Prefix:       strings.Trim(cfg.Prefix, "/"),
		BaseURL:      strings.TrimRight(cfg.PublicURL, "/"),
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: %w", err)
	}
	if cfg.PublicURL != "" {
		return New(s3), nil
	}
	return NewPrivate(s3, cfg.Expiry), nil
}
