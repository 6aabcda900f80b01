package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelagency/internal/authz"
	"travelagency/pkg/apperr"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectUser = `
SELECT id, email, password_hash, name, phone, role, created_at
FROM users
`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = authz.Role(role)
	return &u, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, selectUser+`WHERE email = $1`, NormalizeEmail(email)))
}

func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, selectUser+`WHERE id = $1`, id))
}

// CurrentRole returns the role stored for id. It backs api.RefreshRole.
func (r *Repository) CurrentRole(ctx context.Context, id string) (authz.Role, error) {
	var role string
	err := r.db.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, id).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.NotFound("user", id)
	}
	return authz.Role(role), err
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*User, error) {
	return scanUser(tx.QueryRow(ctx, selectUser+`WHERE id = $1 FOR UPDATE`, id))
}

// ListByRoles returns users holding any of roles, newest first.
func (r *Repository) ListByRoles(ctx context.Context, roles ...authz.Role) ([]User, error) {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	rows, err := r.db.Query(ctx, selectUser+`WHERE role = ANY($1) ORDER BY created_at DESC, id`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

type CreateParams struct {
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Role         authz.Role
}

// Create inserts a user. A taken email is reported as a validation error.
func Create(ctx context.Context, tx pgx.Tx, p CreateParams) (*User, error) {
	const q = `
INSERT INTO users (email, password_hash, name, phone, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, email, password_hash, name, phone, role, created_at
`
	u, err := scanUser(tx.QueryRow(ctx, q, NormalizeEmail(p.Email), p.PasswordHash, p.Name, p.Phone, string(p.Role)))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, &apperr.ValidationError{Code: "EMAIL_TAKEN", Field: "email", Value: p.Email, Message: "an account with this email already exists"}
	}
	return u, err
}

func UpdateRole(ctx context.Context, tx pgx.Tx, id string, role authz.Role) error {
	const q = `
UPDATE users
SET role = $2,
    updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, id, string(role))
	return err
}

// UpsertSuperAdmin makes sure the bootstrap account exists with the
// SUPER_ADMIN role.
func (r *Repository) UpsertSuperAdmin(ctx context.Context, email, passwordHash string) error {
	const q = `
INSERT INTO users (email, password_hash, name, role)
VALUES ($1, $2, 'Super Admin', 'SUPER_ADMIN')
ON CONFLICT (email) DO UPDATE SET
  role = 'SUPER_ADMIN',
  updated_at = NOW()
`
	_, err := r.db.Exec(ctx, q, NormalizeEmail(email), passwordHash)
	return err
}
