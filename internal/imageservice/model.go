package imageservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectExists   = errors.New("an object with this name already exists")
)

func newImageModel(db *sql.DB) *ImageModel {
	return &ImageModel{db: db}
}

// insert stores a new object. Uploads never overwrite: a name collision is a
// unique violation surfaced as ErrObjectExists.
func (m *ImageModel) insert(ctx context.Context, o *Object) error {
	query := `
		INSERT INTO storage_objects (bucket_id, name, content_type, cache_control, data)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := m.db.ExecContext(ctx, query, o.Bucket, o.Name, o.ContentType, o.CacheControl, o.Data)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrObjectExists
		}
		return err
	}

	return nil
}

func (m *ImageModel) get(ctx context.Context, bucket, name string) (*Object, error) {
	query := `
		SELECT bucket_id, name, content_type, cache_control, data, created_at
		FROM storage_objects
		WHERE bucket_id = $1 AND name = $2`

	row := m.db.QueryRowContext(ctx, query, bucket, name)

	var o Object
	err := row.Scan(&o.Bucket, &o.Name, &o.ContentType, &o.CacheControl, &o.Data, &o.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrObjectNotFound
		default:
			return nil, err
		}
	}

	return &o, nil
}
