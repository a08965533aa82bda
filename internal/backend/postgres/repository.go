// Package postgres reads and writes listings directly in the managed
// Postgres database behind the CoLink API.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/loganlanou/colink-venture/internal/backend"
)

// Repository implements the business and post repositories over Postgres.
type Repository struct {
	db *sql.DB
}

var (
	_ backend.BusinessRepository = (*Repository)(nil)
	_ backend.PostRepository     = (*Repository)(nil)
)

// Open connects to databaseURL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Repository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

// NewRepository wraps an existing connection pool.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

const businessColumns = `id, owner_id, name, description, industry, account_type, category,
	location, website, logo_url, partnership_offers, sponsorship_offers, gallery`

type scanner interface {
	Scan(dest ...any) error
}

func scanBusiness(row scanner) (backend.Business, error) {
	var b backend.Business
	var desc, industry, accountType, category, loc, web, logo sql.NullString
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.Name, &desc, &industry, &accountType, &category,
		&loc, &web, &logo,
		pq.Array(&b.PartnershipOffers), pq.Array(&b.SponsorshipOffers), pq.Array(&b.Gallery),
	)
	if err != nil {
		return backend.Business{}, err
	}

	b.Description = desc.String
	b.Industry = industry.String
	b.AccountType = strings.Trim(accountType.String, `"`)
	b.Category = category.String
	b.Location = loc.String
	b.Website = web.String
	b.LogoURL = logo.String

	if b.PartnershipOffers == nil {
		b.PartnershipOffers = []string{}
	}
	if b.SponsorshipOffers == nil {
		b.SponsorshipOffers = []string{}
	}
	if b.Gallery == nil {
		b.Gallery = []string{}
	}
	return b, nil
}

func (r *Repository) queryBusinesses(ctx context.Context, query string, args ...any) ([]backend.Business, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query businesses: %w", err)
	}
	defer rows.Close()

	var list []backend.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *Repository) ListBusinesses(ctx context.Context) ([]backend.Business, error) {
	return r.queryBusinesses(ctx, `SELECT `+businessColumns+` FROM businesses ORDER BY created_at DESC`)
}

func (r *Repository) GetBusiness(ctx context.Context, id string) (*backend.Business, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	b, err := scanBusiness(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backend.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	return &b, nil
}

func (r *Repository) CreateBusiness(ctx context.Context, b backend.Business) (*backend.Business, error) {
	query := `
		INSERT INTO businesses (owner_id, name, description, industry, account_type, category,
			location, website, logo_url, partnership_offers, sponsorship_offers, gallery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + businessColumns

	row := r.db.QueryRowContext(ctx, query,
		b.OwnerID, b.Name, b.Description, b.Industry, b.AccountType, b.Category,
		b.Location, b.Website, b.LogoURL,
		pq.Array(b.PartnershipOffers), pq.Array(b.SponsorshipOffers), pq.Array(b.Gallery),
	)
	created, err := scanBusiness(row)
	if err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}
	return &created, nil
}

func (r *Repository) BusinessCategories(ctx context.Context, accountType string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM businesses
		WHERE account_type = $1 AND category IS NOT NULL AND category <> ''
		ORDER BY category`, accountType)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) BusinessesByCategory(ctx context.Context, accountType, category string) ([]backend.Business, error) {
	return r.queryBusinesses(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE account_type = $1 AND category = $2 ORDER BY name`,
		accountType, category)
}

func (r *Repository) ListPosts(ctx context.Context) ([]backend.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, author_id, COALESCE(author_name, ''), content, COALESCE(image_url, ''), created_at
		FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []backend.Post
	for rows.Next() {
		var p backend.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Content, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *Repository) CreatePost(ctx context.Context, p backend.NewPost) (*backend.Post, error) {
	var post backend.Post
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO posts (author_id, content, image_url)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, author_id, COALESCE(author_name, ''), content, COALESCE(image_url, ''), created_at`,
		p.AuthorID, p.Content, p.ImageURL,
	).Scan(&post.ID, &post.AuthorID, &post.AuthorName, &post.Content, &post.ImageURL, &post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

func (r *Repository) DeletePost(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return backend.ErrNotFound
	}
	return nil
}
