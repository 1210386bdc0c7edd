package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
)

const pgUniqueViolation = "23505"

// PostgresStore is a PostgreSQL implementation of shortener.Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Add(ctx context.Context, link *shortener.Link) error {
	query := `
		INSERT INTO links (id, code, original_url, created_at, expires_at, clicks)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := p.pool.Exec(ctx, query,
		link.ID,
		string(link.Code),
		link.OriginalURL,
		link.CreatedAt,
		link.ExpiresAt,
		link.Clicks,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", shortener.ErrCodeConflict, link.Code)
		}

		return err
	}

	return nil
}

func (p *PostgresStore) ExistsByCode(ctx context.Context, code shortener.Code) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM links WHERE code = $1)`, string(code)).Scan(&exists)

	return exists, err
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	query := `
		SELECT id, code, original_url, created_at, expires_at, clicks
		FROM links
		WHERE code = $1
	`

	link, err := scanLink(p.pool.QueryRow(ctx, query, string(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return link, nil
}

func (p *PostgresStore) GetRecent(ctx context.Context, count int) ([]*shortener.Link, error) {
	query := `
		SELECT id, code, original_url, created_at, expires_at, clicks
		FROM links
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := p.pool.Query(ctx, query, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*shortener.Link

	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	return links, rows.Err()
}

func (p *PostgresStore) Delete(ctx context.Context, code shortener.Code) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM links WHERE code = $1`, string(code))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// Shutdown closes the pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

// Ping reports whether the database is reachable.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func scanLink(row pgx.Row) (*shortener.Link, error) {
	var (
		link shortener.Link
		code string
	)

	err := row.Scan(
		&link.ID,
		&code,
		&link.OriginalURL,
		&link.CreatedAt,
		&link.ExpiresAt,
		&link.Clicks,
	)
	if err != nil {
		return nil, err
	}

	link.Code = shortener.Code(code)

	return &link, nil
}

// Compile-time check.
var _ shortener.Store = (*PostgresStore)(nil)
