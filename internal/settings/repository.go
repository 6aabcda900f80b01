package settings

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt string          `json:"updatedAt"`
}

func Upsert(ctx context.Context, tx pgx.Tx, key string, value json.RawMessage, actorID string) (*Setting, error) {
	const q = `
INSERT INTO settings (key, value, updated_by)
VALUES ($1, CAST($2 AS jsonb), $3)
ON CONFLICT (key) DO UPDATE SET
  value = EXCLUDED.value,
  updated_by = EXCLUDED.updated_by,
  updated_at = NOW()
RETURNING key, value, updated_at::text
`
	s := &Setting{}
	if err := tx.QueryRow(ctx, q, key, string(value), actorID).Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repository) List(ctx context.Context) ([]Setting, error) {
	const q = `
SELECT key, value, updated_at::text
FROM settings
ORDER BY key ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Setting{}
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
