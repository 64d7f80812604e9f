package schemaservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/fennwick/pressroom/internal/imageservice"
)

// SetupMessage is returned when the full provisioning sequence succeeds.
const SetupMessage = "blog database setup successful"

// Provisioner brings the backing schema up to the shape the application
// expects: the post table with its trigger, index and row-level policies, the
// image bucket with its storage policies, and the admin session table. Every
// statement is individually idempotent, so the whole sequence is safe to run
// on every invocation and safe to retry after a partial failure.
type Provisioner struct {
	dsn        string
	adminEmail string
	logger     *slog.Logger
}

func NewProvisioner(dsn, adminEmail string, logger *slog.Logger) *Provisioner {
	return &Provisioner{
		dsn:        dsn,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

type statement struct {
	desc string
	sql  string
}

// EnsureSchema runs the provisioning sequence over its own short-lived
// connection, which is closed on every exit path. The first failing statement
// aborts the sequence; earlier statements are not rolled back (none are
// transactional) because each one may be retried on the next invocation.
func (p *Provisioner) EnsureSchema(ctx context.Context) (string, error) {
	db, err := sql.Open("postgres", p.dsn)
	if err != nil {
		return "", fmt.Errorf("open provisioning connection: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return "", fmt.Errorf("ping provisioning connection: %w", err)
	}

	// The UUID extension backs the post table's key default. Failure here is
	// non-fatal: the extension may already exist or the role may lack the
	// privilege, and both are survivable.
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		p.logger.Warn("could not ensure uuid-ossp extension", slog.String("error", err.Error()))
	}

	for _, st := range p.statements() {
		if _, err := db.ExecContext(ctx, st.sql); err != nil {
			return "", fmt.Errorf("%s: %w", st.desc, err)
		}
	}

	if err := p.ensureUpdateTrigger(ctx, db); err != nil {
		return "", err
	}

	for _, st := range p.storageStatements() {
		if _, err := db.ExecContext(ctx, st.sql); err != nil {
			return "", fmt.Errorf("%s: %w", st.desc, err)
		}
	}

	return SetupMessage, nil
}

func (p *Provisioner) statements() []statement {
	stmts := []statement{
		{
			desc: "create update timestamp function",
			sql: `
				CREATE OR REPLACE FUNCTION update_updated_at_column()
				RETURNS TRIGGER AS $$
				BEGIN
				    NEW.updated_at = now();
				    RETURN NEW;
				END;
				$$ LANGUAGE plpgsql`,
		},
		{
			desc: "create blog_posts table",
			sql: `
				CREATE TABLE IF NOT EXISTS blog_posts (
				    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				    title TEXT NOT NULL,
				    slug TEXT UNIQUE,
				    published_at TIMESTAMPTZ NOT NULL,
				    description TEXT,
				    keywords TEXT,
				    content TEXT NOT NULL,
				    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
				)`,
		},
		{
			desc: "enable row level security on blog_posts",
			sql:  `ALTER TABLE blog_posts ENABLE ROW LEVEL SECURITY`,
		},
		{
			desc: "force row level security on blog_posts",
			sql:  `ALTER TABLE blog_posts FORCE ROW LEVEL SECURITY`,
		},
		{
			desc: "drop public read policy",
			sql:  `DROP POLICY IF EXISTS blog_posts_public_read ON blog_posts`,
		},
		{
			desc: "create public read policy",
			sql: `
				CREATE POLICY blog_posts_public_read
				ON blog_posts
				FOR SELECT
				USING (true)`,
		},
	}

	if p.adminEmail != "" {
		email := pq.QuoteLiteral(p.adminEmail)
		stmts = append(stmts,
			statement{
				desc: "drop admin write policy",
				sql:  `DROP POLICY IF EXISTS blog_posts_admin_write ON blog_posts`,
			},
			statement{
				desc: "create admin write policy",
				sql: fmt.Sprintf(`
					CREATE POLICY blog_posts_admin_write
					ON blog_posts
					FOR ALL
					USING (current_setting('app.email', true) = %s)
					WITH CHECK (current_setting('app.email', true) = %s)`, email, email),
			},
		)
	} else {
		p.logger.Warn("admin email not configured, admin write policy not created")
	}

	stmts = append(stmts, statement{
		desc: "create unique slug index",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_blog_posts_slug ON blog_posts(slug)`,
	})

	return stmts
}

// ensureUpdateTrigger creates the updated_at trigger only when it does not
// already exist: CREATE TRIGGER has no IF NOT EXISTS form, so existence is
// checked against pg_trigger first.
func (p *Provisioner) ensureUpdateTrigger(ctx context.Context, db *sql.DB) error {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'update_blog_posts_updated_at')`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check update trigger: %w", err)
	}

	if exists {
		return nil
	}

	_, err = db.ExecContext(ctx, `DROP TRIGGER IF EXISTS update_blog_posts_updated_at ON blog_posts`)
	if err != nil {
		return fmt.Errorf("drop update trigger: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TRIGGER update_blog_posts_updated_at
		BEFORE UPDATE ON blog_posts
		FOR EACH ROW
		EXECUTE PROCEDURE update_updated_at_column()`)
	if err != nil {
		return fmt.Errorf("create update trigger: %w", err)
	}

	return nil
}

func (p *Provisioner) storageStatements() []statement {
	bucket := pq.QuoteLiteral(imageservice.BucketName)

	stmts := []statement{
		{
			desc: "create storage_buckets table",
			sql: `
				CREATE TABLE IF NOT EXISTS storage_buckets (
				    id TEXT PRIMARY KEY,
				    name TEXT NOT NULL,
				    public BOOLEAN NOT NULL DEFAULT false,
				    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
				)`,
		},
		{
			desc: "create storage_objects table",
			sql: `
				CREATE TABLE IF NOT EXISTS storage_objects (
				    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				    bucket_id TEXT NOT NULL REFERENCES storage_buckets(id),
				    name TEXT NOT NULL,
				    content_type TEXT NOT NULL,
				    cache_control TEXT NOT NULL DEFAULT 'max-age=3600',
				    data BYTEA NOT NULL,
				    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				    UNIQUE (bucket_id, name)
				)`,
		},
		{
			desc: "ensure image bucket",
			sql: fmt.Sprintf(`
				INSERT INTO storage_buckets (id, name, public)
				VALUES (%s, %s, true)
				ON CONFLICT (id) DO NOTHING`, bucket, bucket),
		},
		{
			desc: "enable row level security on storage_objects",
			sql:  `ALTER TABLE storage_objects ENABLE ROW LEVEL SECURITY`,
		},
		{
			desc: "drop storage public read policy",
			sql:  `DROP POLICY IF EXISTS storage_objects_public_read ON storage_objects`,
		},
		{
			desc: "create storage public read policy",
			sql: fmt.Sprintf(`
				CREATE POLICY storage_objects_public_read
				ON storage_objects
				FOR SELECT
				USING (bucket_id = %s)`, bucket),
		},
		{
			desc: "drop storage admin write policy",
			sql:  `DROP POLICY IF EXISTS storage_objects_admin_write ON storage_objects`,
		},
	}

	if p.adminEmail != "" {
		email := pq.QuoteLiteral(p.adminEmail)
		stmts = append(stmts, statement{
			desc: "create storage admin write policy",
			sql: fmt.Sprintf(`
				CREATE POLICY storage_objects_admin_write
				ON storage_objects
				FOR ALL
				USING (bucket_id = %s AND current_setting('app.email', true) = %s)
				WITH CHECK (bucket_id = %s AND current_setting('app.email', true) = %s)`, bucket, email, bucket, email),
		})
	} else {
		p.logger.Warn("admin email not configured, storage admin write policy not created")
	}

	stmts = append(stmts, statement{
		desc: "create admin_sessions table",
		sql: `
			CREATE TABLE IF NOT EXISTS admin_sessions (
			    hash BYTEA PRIMARY KEY,
			    email TEXT NOT NULL,
			    expiry TIMESTAMPTZ NOT NULL
			)`,
	})

	return stmts
}
