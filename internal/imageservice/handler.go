package imageservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fennwick/pressroom/internal/common"
)

// BucketName is the single bucket backing image uploads. The schema
// provisioner guarantees it exists.
const BucketName = "blog-images"

const defaultCacheControl = "max-age=3600"

// ErrPublicURLUnresolved marks the partial-success case: the object was
// stored but no public URL could be produced for it.
var ErrPublicURLUnresolved = errors.New("image uploaded but failed to resolve a public URL")

func NewImageService(db *sql.DB, publicBaseURL string) *ImageService {
	return &ImageService{
		m:             newImageModel(db),
		bucket:        BucketName,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Upload validates and stores one image, returning its public URL. The stored
// name is a random identifier with the original extension preserved, so
// collisions are statistically negligible; an actual collision is a store
// error, never an overwrite.
func (s *ImageService) Upload(ctx context.Context, data []byte, contentType, originalName string) (string, error) {
	v := common.NewValidator()
	v.Check(len(data) > 0, "image", "must be provided")
	v.Check(strings.HasPrefix(contentType, "image/"), "image", "invalid file type, please upload an image")
	if !v.Valid() {
		return "", v.ValidationError()
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))

	err := s.m.insert(ctx, &Object{
		Bucket:       s.bucket,
		Name:         name,
		ContentType:  contentType,
		CacheControl: defaultCacheControl,
		Data:         data,
	})
	if err != nil {
		return "", err
	}

	if s.publicBaseURL == "" {
		return "", ErrPublicURLUnresolved
	}

	return fmt.Sprintf("%s/v1/images/%s", s.publicBaseURL, name), nil
}

// Get returns a stored object for public serving.
func (s *ImageService) Get(ctx context.Context, name string) (*Object, error) {
	return s.m.get(ctx, s.bucket, name)
}
