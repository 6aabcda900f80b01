package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"travelagency/pkg/apperr"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectTour = `
SELECT id, title, slug, location, country, category, description, duration_days,
       price::text, currency, rating::text, review_count, featured, is_active, created_at, updated_at
FROM tours
`

func scanTour(row pgx.Row) (*Tour, error) {
	var t Tour
	var price, rating string
	if err := row.Scan(
		&t.ID, &t.Title, &t.Slug, &t.Location, &t.Country, &t.Category, &t.Description, &t.DurationDays,
		&price, &t.Currency, &rating, &t.ReviewCount, &t.Featured, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if t.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	if t.Rating, err = decimal.NewFromString(rating); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) ListTours(ctx context.Context, activeOnly bool) ([]Tour, error) {
	q := selectTour + `ORDER BY featured DESC, created_at DESC, id`
	if activeOnly {
		q = selectTour + `WHERE is_active ORDER BY featured DESC, created_at DESC, id`
	}
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repository) GetTour(ctx context.Context, id string) (*Tour, error) {
	return scanTour(r.db.QueryRow(ctx, selectTour+`WHERE id = $1`, id))
}

func GetTourForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Tour, error) {
	return scanTour(tx.QueryRow(ctx, selectTour+`WHERE id = $1 FOR UPDATE`, id))
}

func InsertTour(ctx context.Context, tx pgx.Tx, t Tour) (string, error) {
	const q = `
INSERT INTO tours (title, slug, location, country, category, description, duration_days, price, currency, featured, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11)
RETURNING id
`
	var id string
	err := tx.QueryRow(ctx, q,
		t.Title, t.Slug, t.Location, t.Country, t.Category, t.Description, t.DurationDays,
		t.Price.String(), t.Currency, t.Featured, t.IsActive,
	).Scan(&id)
	return id, uniqueSlug(err, t.Slug)
}

// UpdateTour replaces editable fields. rating and review_count are derived
// from reviews and never written here.
func UpdateTour(ctx context.Context, tx pgx.Tx, t Tour) error {
	const q = `
UPDATE tours
SET title = $2,
    slug = $3,
    location = $4,
    country = $5,
    category = $6,
    description = $7,
    duration_days = $8,
    price = $9::numeric,
    currency = $10,
    featured = $11,
    is_active = $12,
    updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q,
		t.ID, t.Title, t.Slug, t.Location, t.Country, t.Category, t.Description, t.DurationDays,
		t.Price.String(), t.Currency, t.Featured, t.IsActive,
	)
	return uniqueSlug(err, t.Slug)
}

func uniqueSlug(err error, slug string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Invalid("slug", slug, "a tour with this slug already exists")
	}
	return err
}

const selectVisa = `
SELECT id, country, visa_type, category, description, processing_days,
       price::text, currency, requirements, is_active, created_at, updated_at
FROM visa_packages
`

func scanVisa(row pgx.Row) (*VisaPackage, error) {
	var v VisaPackage
	var price string
	if err := row.Scan(
		&v.ID, &v.Country, &v.VisaType, &v.Category, &v.Description, &v.ProcessingDays,
		&price, &v.Currency, &v.Requirements, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	amt, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	v.Price = amt
	return &v, nil
}

func (r *Repository) ListVisas(ctx context.Context, activeOnly bool) ([]VisaPackage, error) {
	q := selectVisa + `ORDER BY country ASC, visa_type ASC, id`
	if activeOnly {
		q = selectVisa + `WHERE is_active ORDER BY country ASC, visa_type ASC, id`
	}
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []VisaPackage{}
	for rows.Next() {
		v, err := scanVisa(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *Repository) GetVisa(ctx context.Context, id string) (*VisaPackage, error) {
	return scanVisa(r.db.QueryRow(ctx, selectVisa+`WHERE id = $1`, id))
}

func GetVisaForUpdate(ctx context.Context, tx pgx.Tx, id string) (*VisaPackage, error) {
	return scanVisa(tx.QueryRow(ctx, selectVisa+`WHERE id = $1 FOR UPDATE`, id))
}

func requirementsJSON(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func InsertVisa(ctx context.Context, tx pgx.Tx, v VisaPackage) (string, error) {
	const q = `
INSERT INTO visa_packages (country, visa_type, category, description, processing_days, price, currency, requirements, is_active)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, CAST($8 AS jsonb), $9)
RETURNING id
`
	var id string
	err := tx.QueryRow(ctx, q,
		v.Country, v.VisaType, v.Category, v.Description, v.ProcessingDays,
		v.Price.String(), v.Currency, requirementsJSON(v.Requirements), v.IsActive,
	).Scan(&id)
	return id, err
}

func UpdateVisa(ctx context.Context, tx pgx.Tx, v VisaPackage) error {
	const q = `
UPDATE visa_packages
SET country = $2,
    visa_type = $3,
    category = $4,
    description = $5,
    processing_days = $6,
    price = $7::numeric,
    currency = $8,
    requirements = CAST($9 AS jsonb),
    is_active = $10,
    updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q,
		v.ID, v.Country, v.VisaType, v.Category, v.Description, v.ProcessingDays,
		v.Price.String(), v.Currency, requirementsJSON(v.Requirements), v.IsActive,
	)
	return err
}
