package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelagency/internal/workflow"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectPosting = `
SELECT id, title, department, type, location, salary, description,
       requirements, responsibilities, benefits, positions, is_active, created_at, updated_at
FROM job_postings
`

func scanPosting(row pgx.Row) (*Posting, error) {
	var p Posting
	if err := row.Scan(
		&p.ID, &p.Title, &p.Department, &p.Type, &p.Location, &p.Salary, &p.Description,
		&p.Requirements, &p.Responsibilities, &p.Benefits, &p.Positions, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) listPostings(ctx context.Context, q string, args ...any) ([]Posting, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Posting{}
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repository) ListPostings(ctx context.Context) ([]Posting, error) {
	return r.listPostings(ctx, selectPosting+`ORDER BY created_at DESC, id`)
}

func (r *Repository) ListActivePostings(ctx context.Context) ([]Posting, error) {
	return r.listPostings(ctx, selectPosting+`WHERE is_active ORDER BY created_at DESC, id`)
}

func (r *Repository) GetPosting(ctx context.Context, id string) (*Posting, error) {
	return scanPosting(r.db.QueryRow(ctx, selectPosting+`WHERE id = $1`, id))
}

func GetPostingForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Posting, error) {
	return scanPosting(tx.QueryRow(ctx, selectPosting+`WHERE id = $1 FOR UPDATE`, id))
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func InsertPosting(ctx context.Context, tx pgx.Tx, p Posting) (string, error) {
	const q = `
INSERT INTO job_postings (title, department, type, location, salary, description,
                          requirements, responsibilities, benefits, positions, is_active)
VALUES ($1, $2, $3, $4, $5, $6, CAST($7 AS jsonb), CAST($8 AS jsonb), CAST($9 AS jsonb), $10, $11)
RETURNING id
`
	var id string
	err := tx.QueryRow(ctx, q,
		p.Title, p.Department, p.Type, p.Location, p.Salary, p.Description,
		jsonList(p.Requirements), jsonList(p.Responsibilities), jsonList(p.Benefits), p.Positions, p.IsActive,
	).Scan(&id)
	return id, err
}

// UpdatePosting replaces the editable fields. isActive has its own toggle.
func UpdatePosting(ctx context.Context, tx pgx.Tx, p Posting) error {
	const q = `
UPDATE job_postings
SET title = $2,
    department = $3,
    type = $4,
    location = $5,
    salary = $6,
    description = $7,
    requirements = CAST($8 AS jsonb),
    responsibilities = CAST($9 AS jsonb),
    benefits = CAST($10 AS jsonb),
    positions = $11,
    updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q,
		p.ID, p.Title, p.Department, p.Type, p.Location, p.Salary, p.Description,
		jsonList(p.Requirements), jsonList(p.Responsibilities), jsonList(p.Benefits), p.Positions,
	)
	return err
}

func UpdatePostingActive(ctx context.Context, tx pgx.Tx, id string, active bool) (time.Time, error) {
	const q = `
UPDATE job_postings
SET is_active = $2,
    updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`
	var at time.Time
	err := tx.QueryRow(ctx, q, id, active).Scan(&at)
	return at, err
}

const selectApplication = `
SELECT a.id, a.job_id, j.title, a.name, a.email, a.phone, a.experience, a.cover_letter,
       a.status, a.notes, a.applied_at, a.updated_at
FROM job_applications a
JOIN job_postings j ON j.id = a.job_id
`

func scanApplication(row pgx.Row) (*Application, error) {
	var a Application
	var status string
	if err := row.Scan(
		&a.ID, &a.JobID, &a.JobTitle, &a.Name, &a.Email, &a.Phone, &a.Experience, &a.CoverLetter,
		&status, &a.Notes, &a.AppliedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Status = workflow.ApplicationStatus(status)
	return &a, nil
}

func (r *Repository) ListApplications(ctx context.Context) ([]Application, error) {
	rows, err := r.db.Query(ctx, selectApplication+`ORDER BY a.applied_at DESC, a.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Repository) GetApplication(ctx context.Context, id string) (*Application, error) {
	return scanApplication(r.db.QueryRow(ctx, selectApplication+`WHERE a.id = $1`, id))
}

func GetApplicationForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Application, error) {
	return scanApplication(tx.QueryRow(ctx, selectApplication+`WHERE a.id = $1 FOR UPDATE OF a`, id))
}

type SubmitParams struct {
	JobID       string
	Name        string
	Email       string
	Phone       string
	Experience  string
	CoverLetter string
}

func InsertApplication(ctx context.Context, tx pgx.Tx, p SubmitParams) (string, error) {
	const q = `
INSERT INTO job_applications (job_id, name, email, phone, experience, cover_letter, status)
VALUES ($1, $2, $3, $4, $5, $6, 'PENDING')
RETURNING id
`
	var id string
	err := tx.QueryRow(ctx, q, p.JobID, p.Name, p.Email, p.Phone, p.Experience, p.CoverLetter).Scan(&id)
	return id, err
}

// UpdateApplication writes status and notes. applied_at is never written.
func UpdateApplication(ctx context.Context, tx pgx.Tx, a *Application) (time.Time, error) {
	const q = `
UPDATE job_applications
SET status = $2,
    notes = $3,
    updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`
	var at time.Time
	err := tx.QueryRow(ctx, q, a.ID, string(a.Status), a.Notes).Scan(&at)
	return at, err
}
