package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS listings (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL DEFAULT '',
	price             TEXT NOT NULL DEFAULT '',
	district          TEXT NOT NULL DEFAULT '',
	img_url           TEXT,
	description       TEXT,
	last_seen_at      TIMESTAMPTZ NOT NULL,
	first_uploaded_at TIMESTAMPTZ,
	published_at      TIMESTAMPTZ
);
`

// Postgres implements ListingStore on a PostgreSQL pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to PostgreSQL, ensures the listings table exists, and
// returns a ready-to-use store. A connection failure here is fatal for the
// process, so the error carries the full cause.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// IsNewAndTouch checks existence and advances last_seen_at in one round trip
// per branch. Execution is single-threaded, so read-then-write ordering is
// sufficient for the check-and-insert.
func (p *Postgres) IsNewAndTouch(ctx context.Context, id string, now time.Time) (bool, error) {
	var lastSeen time.Time
	err := p.pool.QueryRow(ctx, `SELECT last_seen_at FROM listings WHERE id = $1`, id).Scan(&lastSeen)
	if errors.Is(err, pgx.ErrNoRows) {
		_, err = p.pool.Exec(ctx,
			`INSERT INTO listings (id, last_seen_at, first_uploaded_at) VALUES ($1, $2, $2)`,
			id, now)
		if err != nil {
			return false, fmt.Errorf("postgres: insert stub %s: %w", id, err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("postgres: select %s: %w", id, err)
	}

	_, err = p.pool.Exec(ctx,
		`UPDATE listings SET last_seen_at = GREATEST(last_seen_at, $2) WHERE id = $1`,
		id, now)
	if err != nil {
		return false, fmt.Errorf("postgres: touch %s: %w", id, err)
	}
	return false, nil
}

// Upsert inserts or refreshes a listing. COALESCE keeps an already-backfilled
// description from being cleared by the search pass.
func (p *Postgres) Upsert(ctx context.Context, l *Listing) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO listings (id, title, price, district, img_url, description, last_seen_at, first_uploaded_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title             = EXCLUDED.title,
			price             = EXCLUDED.price,
			district          = EXCLUDED.district,
			img_url           = EXCLUDED.img_url,
			description       = COALESCE(listings.description, EXCLUDED.description),
			last_seen_at      = GREATEST(listings.last_seen_at, EXCLUDED.last_seen_at),
			first_uploaded_at = COALESCE(listings.first_uploaded_at, EXCLUDED.first_uploaded_at),
			published_at      = EXCLUDED.published_at
	`, l.ID, l.Title, l.Price, l.District, l.ImageURL, l.Description,
		l.LastSeenAt, l.FirstUploadedAt, l.PublishedAt)
	if err != nil {
		return fmt.Errorf("postgres: upsert %s: %w", l.ID, err)
	}
	return nil
}

// FindIncomplete selects rows missing a description inside the freshness
// windows, admitted by the district allow-list and not hitting the title
// deny-list.
func (p *Postgres) FindIncomplete(ctx context.Context, filter Filter) ([]IncompleteRow, error) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString(`SELECT id, title, district, price FROM listings WHERE (description IS NULL OR description = '')`)

	if filter.UploadWindow > 0 {
		args = append(args, time.Now().UTC().Add(-filter.UploadWindow))
		fmt.Fprintf(&sb, ` AND first_uploaded_at >= $%d`, len(args))
	}
	if filter.PublishedWindow > 0 {
		args = append(args, time.Now().UTC().Add(-filter.PublishedWindow))
		fmt.Fprintf(&sb, ` AND published_at >= $%d`, len(args))
	}

	if len(filter.DistrictAllow) > 0 {
		clauses := make([]string, 0, len(filter.DistrictAllow))
		for _, d := range filter.DistrictAllow {
			args = append(args, "%"+d+"%")
			clauses = append(clauses, fmt.Sprintf(`district ILIKE $%d`, len(args)))
		}
		sb.WriteString(` AND (` + strings.Join(clauses, " OR ") + `)`)
	}

	for _, t := range filter.TitleDeny {
		args = append(args, "%"+t+"%")
		fmt.Fprintf(&sb, ` AND title NOT ILIKE $%d`, len(args))
	}

	sb.WriteString(` ORDER BY first_uploaded_at`)

	rows, err := p.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: find incomplete: %w", err)
	}
	defer rows.Close()

	var result []IncompleteRow
	for rows.Next() {
		var r IncompleteRow
		if err := rows.Scan(&r.ID, &r.Title, &r.District, &r.Price); err != nil {
			return nil, fmt.Errorf("postgres: scan incomplete row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// MarkUnavailable stores the unavailability sentinel and clears the image.
func (p *Postgres) MarkUnavailable(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE listings SET description = $2, img_url = NULL WHERE id = $1`,
		id, DescriptionUnavailable)
	if err != nil {
		return fmt.Errorf("postgres: mark unavailable %s: %w", id, err)
	}
	return nil
}

// MarkDetails stores the backfilled description and display image.
func (p *Postgres) MarkDetails(ctx context.Context, id string, description string, imageURL *string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE listings SET description = $2, img_url = $3 WHERE id = $1`,
		id, description, imageURL)
	if err != nil {
		return fmt.Errorf("postgres: mark details %s: %w", id, err)
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
