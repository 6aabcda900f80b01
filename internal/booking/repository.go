package booking

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"travelagency/internal/workflow"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectBooking = `
SELECT b.id, b.customer_id, u.name, u.email, b.package_kind, b.package_id, b.package_title,
       b.travel_date, b.travelers, b.total_amount::text, b.currency,
       b.booking_status, b.payment_status, b.special_requests, b.created_at, b.updated_at
FROM bookings b
JOIN users u ON u.id = b.customer_id
`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var total, kind, status, payment string
	if err := row.Scan(
		&b.ID, &b.CustomerID, &b.CustomerName, &b.CustomerEmail, &kind, &b.PackageID, &b.PackageTitle,
		&b.TravelDate, &b.Travelers, &total, &b.Currency,
		&status, &payment, &b.SpecialRequests, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	amt, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	b.TotalAmount = amt
	b.PackageKind = PackageKind(kind)
	b.BookingStatus = workflow.BookingStatus(status)
	b.PaymentStatus = workflow.PaymentStatus(payment)
	return &b, nil
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]Booking, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ListAll returns every booking, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Booking, error) {
	return r.list(ctx, selectBooking+`ORDER BY b.created_at DESC, b.id`)
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID string) ([]Booking, error) {
	return r.list(ctx, selectBooking+`WHERE b.customer_id = $1 ORDER BY b.created_at DESC, b.id`, customerID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, selectBooking+`WHERE b.id = $1`, id))
}

// GetForUpdate locks the booking row for the rest of tx.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Booking, error) {
	return scanBooking(tx.QueryRow(ctx, selectBooking+`WHERE b.id = $1 FOR UPDATE OF b`, id))
}

func UpdateBookingStatus(ctx context.Context, tx pgx.Tx, id string, next workflow.BookingStatus) (time.Time, error) {
	const q = `
UPDATE bookings
SET booking_status = $2,
    updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`
	var at time.Time
	err := tx.QueryRow(ctx, q, id, string(next)).Scan(&at)
	return at, err
}

func UpdatePaymentStatus(ctx context.Context, tx pgx.Tx, id string, next workflow.PaymentStatus) (time.Time, error) {
	const q = `
UPDATE bookings
SET payment_status = $2,
    updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`
	var at time.Time
	err := tx.QueryRow(ctx, q, id, string(next)).Scan(&at)
	return at, err
}

// Package is the priced catalog entry a booking is made against.
type Package struct {
	Title    string
	Price    decimal.Decimal
	Currency string
	Active   bool
}

func GetPackage(ctx context.Context, tx pgx.Tx, kind PackageKind, id string) (*Package, error) {
	q := `SELECT title, price::text, currency, is_active FROM tours WHERE id = $1`
	if kind == PackageVisa {
		q = `SELECT country || ' ' || visa_type, price::text, currency, is_active FROM visa_packages WHERE id = $1`
	}
	var p Package
	var price string
	if err := tx.QueryRow(ctx, q, id).Scan(&p.Title, &price, &p.Currency, &p.Active); err != nil {
		return nil, err
	}
	amt, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	p.Price = amt
	return &p, nil
}

type CreateParams struct {
	CustomerID      string
	PackageKind     PackageKind
	PackageID       string
	PackageTitle    string
	TravelDate      time.Time
	Travelers       int
	TotalAmount     decimal.Decimal
	Currency        string
	SpecialRequests string
}

// Create inserts a booking in PENDING/PENDING and returns its id.
func Create(ctx context.Context, tx pgx.Tx, p CreateParams) (string, error) {
	const q = `
INSERT INTO bookings (customer_id, package_kind, package_id, package_title, travel_date, travelers,
                      total_amount, currency, booking_status, payment_status, special_requests)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, 'PENDING', 'PENDING', $9)
RETURNING id
`
	var id string
	err := tx.QueryRow(ctx, q,
		p.CustomerID, string(p.PackageKind), p.PackageID, p.PackageTitle, p.TravelDate, p.Travelers,
		p.TotalAmount.String(), p.Currency, p.SpecialRequests,
	).Scan(&id)
	return id, err
}
