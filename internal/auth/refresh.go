package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

func InsertRefresh(ctx context.Context, tx pgx.Tx, userID, tokenHash string, expiresAt time.Time) error {
	const q = `
INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
VALUES ($1, $2, $3)
`
	_, err := tx.Exec(ctx, q, userID, tokenHash, expiresAt)
	return err
}

// ConsumeRefresh revokes a live refresh token and returns its owner. A
// token can be consumed once; replaying it yields pgx.ErrNoRows.
func ConsumeRefresh(ctx context.Context, tx pgx.Tx, tokenHash string) (string, error) {
	const q = `
UPDATE refresh_tokens
SET revoked_at = NOW()
WHERE token_hash = $1
  AND revoked_at IS NULL
  AND expires_at > NOW()
RETURNING user_id
`
	var userID string
	err := tx.QueryRow(ctx, q, tokenHash).Scan(&userID)
	return userID, err
}

func RevokeRefresh(ctx context.Context, tx pgx.Tx, tokenHash string) error {
	const q = `
UPDATE refresh_tokens
SET revoked_at = NOW()
WHERE token_hash = $1 AND revoked_at IS NULL
`
	_, err := tx.Exec(ctx, q, tokenHash)
	return err
}
