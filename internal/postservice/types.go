package postservice

import (
	"database/sql"
	"time"

	"github.com/fennwick/pressroom/internal/telemetryservice"
)

// Post is a stored blog post. Content is the HTML body exactly as submitted;
// it is rendered verbatim by the presentation layer.
type Post struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
	Description *string   `json:"description,omitempty"`
	Keywords    *string   `json:"keywords,omitempty"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostSummary is the listing projection: no content, a derived snippet instead.
type PostSummary struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
	Snippet     string    `json:"snippet"`
}

type PostList struct {
	Posts       []PostSummary `json:"posts"`
	TotalPages  int           `json:"total_pages"`
	CurrentPage int           `json:"current_page"`
}

type PostModel struct {
	db *sql.DB
}

type PostService struct {
	m    *PostModel
	sink telemetryservice.Sink
}
