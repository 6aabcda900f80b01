package review

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectReview = `
SELECT r.id, r.author_id, u.name, r.tour_id, t.title, r.rating, r.comment, r.is_approved, r.created_at, r.updated_at
FROM reviews r
JOIN users u ON u.id = r.author_id
JOIN tours t ON t.id = r.tour_id
`

func scanReview(row pgx.Row) (*Review, error) {
	var rv Review
	if err := row.Scan(
		&rv.ID, &rv.AuthorID, &rv.AuthorName, &rv.TourID, &rv.TourTitle,
		&rv.Rating, &rv.Comment, &rv.IsApproved, &rv.CreatedAt, &rv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]Review, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}

func (r *Repository) ListAll(ctx context.Context) ([]Review, error) {
	return r.list(ctx, selectReview+`ORDER BY r.created_at DESC, r.id`)
}

// ListApprovedByTour is the public view; unapproved reviews never leave it.
func (r *Repository) ListApprovedByTour(ctx context.Context, tourID string) ([]Review, error) {
	return r.list(ctx, selectReview+`WHERE r.tour_id = $1 AND r.is_approved ORDER BY r.created_at DESC, r.id`, tourID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Review, error) {
	return scanReview(r.db.QueryRow(ctx, selectReview+`WHERE r.id = $1`, id))
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Review, error) {
	return scanReview(tx.QueryRow(ctx, selectReview+`WHERE r.id = $1 FOR UPDATE OF r`, id))
}

// TourIsActive reports whether the tour exists and accepts reviews.
func TourIsActive(ctx context.Context, tx pgx.Tx, tourID string) (bool, error) {
	const q = `SELECT is_active FROM tours WHERE id = $1`
	var active bool
	err := tx.QueryRow(ctx, q, tourID).Scan(&active)
	return active, err
}

func Create(ctx context.Context, tx pgx.Tx, authorID, tourID string, rating int, comment string) (string, error) {
	const q = `
INSERT INTO reviews (author_id, tour_id, rating, comment, is_approved)
VALUES ($1, $2, $3, $4, FALSE)
RETURNING id
`
	var id string
	err := tx.QueryRow(ctx, q, authorID, tourID, rating, comment).Scan(&id)
	return id, err
}

func SetApproved(ctx context.Context, tx pgx.Tx, id string, approved bool) (time.Time, error) {
	const q = `
UPDATE reviews
SET is_approved = $2,
    updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`
	var at time.Time
	err := tx.QueryRow(ctx, q, id, approved).Scan(&at)
	return at, err
}

func Delete(ctx context.Context, tx pgx.Tx, id string) error {
	const q = `DELETE FROM reviews WHERE id = $1`
	_, err := tx.Exec(ctx, q, id)
	return err
}

// LockTour takes the tour's row lock so rating recomputes for the same tour
// run one after another.
func LockTour(ctx context.Context, tx pgx.Tx, tourID string) error {
	var one int
	return tx.QueryRow(ctx, `SELECT 1 FROM tours WHERE id = $1 FOR UPDATE`, tourID).Scan(&one)
}

// StoreApproval persists rv.IsApproved and refreshes the tour's rating
// while holding the tour lock.
func StoreApproval(ctx context.Context, tx pgx.Tx, rv *Review) (time.Time, error) {
	if err := LockTour(ctx, tx, rv.TourID); err != nil {
		return time.Time{}, err
	}
	at, err := SetApproved(ctx, tx, rv.ID, rv.IsApproved)
	if err != nil {
		return time.Time{}, err
	}
	return at, RecomputeTourRating(ctx, tx, rv.TourID)
}

// Remove deletes rv. The tour's rating only moves when rv was approved.
func Remove(ctx context.Context, tx pgx.Tx, rv *Review) error {
	if !rv.IsApproved {
		return Delete(ctx, tx, rv.ID)
	}
	if err := LockTour(ctx, tx, rv.TourID); err != nil {
		return err
	}
	if err := Delete(ctx, tx, rv.ID); err != nil {
		return err
	}
	return RecomputeTourRating(ctx, tx, rv.TourID)
}

// RecomputeTourRating derives the tour's rating and review count from its
// approved reviews.
func RecomputeTourRating(ctx context.Context, tx pgx.Tx, tourID string) error {
	const q = `
UPDATE tours
SET rating = COALESCE((SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE tour_id = $1 AND is_approved), 0),
    review_count = (SELECT COUNT(*) FROM reviews WHERE tour_id = $1 AND is_approved),
    updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, tourID)
	return err
}
