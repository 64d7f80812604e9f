package postservice

import (
	"context"
	"database/sql"
	"time"

	"github.com/fennwick/pressroom/internal/common"
	"github.com/fennwick/pressroom/internal/telemetryservice"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 10

func NewPostService(db *sql.DB, sink telemetryservice.Sink) *PostService {
	return &PostService{m: newPostModel(db), sink: sink}
}

type CreatePostRequest struct {
	Title       string
	Content     string
	Slug        string
	Date        string
	Description string
	Keywords    string
}

type UpdatePostRequest struct {
	Title       string
	Content     *string
	Date        string
	Description string
	Keywords    string
}

// Create validates the submission, derives the slug, and inserts the post.
// Returns the stored slug. A colliding slug surfaces as ErrDuplicateSlug.
// Telemetry is reported on every exit path.
func (s *PostService) Create(ctx context.Context, req *CreatePostRequest) (slug string, err error) {
	start := time.Now()
	var storeTime time.Duration
	defer func() {
		s.emit(ctx, "blog_post_created", slug, start, storeTime, err)
	}()

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	publishedAt := validateDate(v, req.Date)
	if !v.Valid() {
		return "", v.ValidationError()
	}

	// A provided slug is still normalised; otherwise derive from the title.
	if req.Slug != "" {
		slug = Slugify(req.Slug)
	} else {
		slug = Slugify(req.Title)
	}
	if slug == "" {
		v.AddError("slug", "could not derive a valid slug from the title")
		return "", v.ValidationError()
	}

	post := &Post{
		Slug:        slug,
		Title:       req.Title,
		PublishedAt: publishedAt,
		Description: nullable(req.Description),
		Keywords:    nullable(req.Keywords),
		Content:     req.Content,
	}

	storeStart := time.Now()
	err = s.m.insert(ctx, post)
	storeTime = time.Since(storeStart)
	if err != nil {
		return "", err
	}

	return slug, nil
}

// Update replaces every field of an existing post except its slug. Content
// must be present but may be empty.
func (s *PostService) Update(ctx context.Context, slug string, req *UpdatePostRequest) (err error) {
	start := time.Now()
	var storeTime time.Duration
	defer func() {
		s.emit(ctx, "blog_post_updated", slug, start, storeTime, err)
	}()

	v := common.NewValidator()
	validateTitle(v, req.Title)
	v.Check(req.Content != nil, "content", "must be provided")
	publishedAt := validateDate(v, req.Date)
	if !v.Valid() {
		return v.ValidationError()
	}

	storeStart := time.Now()
	err = s.m.update(ctx, slug, req.Title, publishedAt, nullable(req.Description), nullable(req.Keywords), *req.Content)
	storeTime = time.Since(storeStart)
	return err
}

func (s *PostService) Delete(ctx context.Context, slug string) (err error) {
	start := time.Now()
	var storeTime time.Duration
	defer func() {
		s.emit(ctx, "blog_post_deleted", slug, start, storeTime, err)
	}()

	storeStart := time.Now()
	err = s.m.delete(ctx, slug)
	storeTime = time.Since(storeStart)
	return err
}

// Get returns a post by its slug.
func (s *PostService) Get(ctx context.Context, slug string) (*Post, error) {
	return s.m.getBySlug(ctx, slug)
}

// List returns one page of posts ordered by published_at descending, each with
// a snippet freshly derived from its stored content. page is clamped to >= 1.
func (s *PostService) List(ctx context.Context, page int) (*PostList, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.m.count(ctx)
	if err != nil {
		return nil, err
	}
	totalPages := (total + PageSize - 1) / PageSize

	posts, err := s.m.list(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}

	summaries := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, PostSummary{
			Slug:        p.Slug,
			Title:       p.Title,
			PublishedAt: p.PublishedAt,
			Snippet:     Snippet(p.Content),
		})
	}

	return &PostList{
		Posts:       summaries,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

func (s *PostService) emit(ctx context.Context, eventType, slug string, start time.Time, storeTime time.Duration, err error) {
	e := telemetryservice.Event{
		EventType:      eventType,
		Slug:           slug,
		ResponseTimeMS: float64(time.Since(start).Microseconds()) / 1000,
		StoreTimeMS:    float64(storeTime.Microseconds()) / 1000,
	}
	if err != nil {
		msg := err.Error()
		e.Error = &msg
	}
	s.sink.Emit(ctx, e)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
