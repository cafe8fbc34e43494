package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/njangihq/zkauth/internal/types"
)

func (b *Backend) GetSalt(ctx context.Context, sub, aud string) (*types.SaltRecord, error) {
	query := `SELECT id, sub, aud, salt_encrypted, iv, tag, created_at, updated_at
		FROM salts WHERE sub = $1 AND aud = $2 LIMIT 1;`

	rows, err := b.pool.Query(ctx, query, sub, aud)
	if err != nil {
		return nil, err
	}

	record, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[types.SaltRecord])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// UpsertSalt inserts a new encrypted salt. On (sub, aud) conflict the
// existing ciphertext is kept untouched and its id returned, so the salt can
// never fork between concurrent first logins.
func (b *Backend) UpsertSalt(ctx context.Context, sub, aud string, ciphertext, iv, tag []byte) (int64, error) {
	query := `INSERT INTO salts (sub, aud, salt_encrypted, iv, tag)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sub, aud) DO UPDATE SET updated_at = now()
		RETURNING id;`

	var id int64
	if err := b.pool.QueryRow(ctx, query, sub, aud, ciphertext, iv, tag).Scan(&id); err != nil {
		return 0, fmt.Errorf("fail to upsert salt, err: %w", err)
	}
	return id, nil
}

func (b *Backend) GetSaltID(ctx context.Context, sub, aud string) (int64, error) {
	query := `SELECT id FROM salts WHERE sub = $1 AND aud = $2 LIMIT 1;`

	var id int64
	err := b.pool.QueryRow(ctx, query, sub, aud).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return id, nil
}

func (b *Backend) InsertRecoveryCode(ctx context.Context, saltID int64, codeHash string) error {
	query := `INSERT INTO recovery_codes (salt_id, code_hash) VALUES ($1, $2);`

	if _, err := b.pool.Exec(ctx, query, saltID, codeHash); err != nil {
		return fmt.Errorf("fail to insert recovery code, err: %w", err)
	}
	return nil
}

func (b *Backend) GetUnusedRecoveryCode(ctx context.Context, saltID int64, codeHash string) (*types.RecoveryCode, error) {
	query := `SELECT id, salt_id, code_hash, created_at, used_at
		FROM recovery_codes
		WHERE salt_id = $1 AND code_hash = $2 AND used_at IS NULL LIMIT 1;`

	rows, err := b.pool.Query(ctx, query, saltID, codeHash)
	if err != nil {
		return nil, err
	}

	code, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[types.RecoveryCode])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &code, nil
}

func (b *Backend) MarkRecoveryCodeUsed(ctx context.Context, id int64) error {
	query := `UPDATE recovery_codes SET used_at = now() WHERE id = $1 AND used_at IS NULL;`

	tag, err := b.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("fail to mark recovery code used, err: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recovery code %d already used", id)
	}
	return nil
}
