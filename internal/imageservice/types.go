package imageservice

import (
	"database/sql"
	"time"
)

// Object is one stored binary in a bucket. Data is held verbatim; no
// processing happens on upload.
type Object struct {
	Bucket       string
	Name         string
	ContentType  string
	CacheControl string
	Data         []byte
	CreatedAt    time.Time
}

type ImageModel struct {
	db *sql.DB
}

type ImageService struct {
	m             *ImageModel
	bucket        string
	publicBaseURL string
}
