package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/njangihq/zkauth/internal/types"
)

func (b *Backend) GetSalt(ctx context.Context, sub, aud string) (*types.SaltRecord, error) {
	query := `SELECT id, sub, aud, salt_encrypted, iv, tag, created_at, updated_at
		FROM salts WHERE sub = ? AND aud = ? LIMIT 1;`

	var record types.SaltRecord
	err := b.db.QueryRowContext(ctx, query, sub, aud).Scan(
		&record.ID, &record.Sub, &record.Aud,
		&record.SaltEncrypted, &record.IV, &record.Tag,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// UpsertSalt inserts a new encrypted salt. On (sub, aud) conflict the
// existing ciphertext is kept untouched and its id returned.
func (b *Backend) UpsertSalt(ctx context.Context, sub, aud string, ciphertext, iv, tag []byte) (int64, error) {
	query := `INSERT INTO salts (sub, aud, salt_encrypted, iv, tag)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (sub, aud) DO UPDATE SET updated_at = CURRENT_TIMESTAMP
		RETURNING id;`

	var id int64
	if err := b.db.QueryRowContext(ctx, query, sub, aud, ciphertext, iv, tag).Scan(&id); err != nil {
		return 0, fmt.Errorf("fail to upsert salt, err: %w", err)
	}
	return id, nil
}

func (b *Backend) GetSaltID(ctx context.Context, sub, aud string) (int64, error) {
	query := `SELECT id FROM salts WHERE sub = ? AND aud = ? LIMIT 1;`

	var id int64
	err := b.db.QueryRowContext(ctx, query, sub, aud).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return id, nil
}

func (b *Backend) InsertRecoveryCode(ctx context.Context, saltID int64, codeHash string) error {
	query := `INSERT INTO recovery_codes (salt_id, code_hash) VALUES (?, ?);`

	if _, err := b.db.ExecContext(ctx, query, saltID, codeHash); err != nil {
		return fmt.Errorf("fail to insert recovery code, err: %w", err)
	}
	return nil
}

func (b *Backend) GetUnusedRecoveryCode(ctx context.Context, saltID int64, codeHash string) (*types.RecoveryCode, error) {
	query := `SELECT id, salt_id, code_hash, created_at, used_at
		FROM recovery_codes
		WHERE salt_id = ? AND code_hash = ? AND used_at IS NULL LIMIT 1;`

	var code types.RecoveryCode
	err := b.db.QueryRowContext(ctx, query, saltID, codeHash).Scan(
		&code.ID, &code.SaltID, &code.CodeHash, &code.CreatedAt, &code.UsedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

func (b *Backend) MarkRecoveryCodeUsed(ctx context.Context, id int64) error {
	query := `UPDATE recovery_codes SET used_at = CURRENT_TIMESTAMP WHERE id = ? AND used_at IS NULL;`

	result, err := b.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("fail to mark recovery code used, err: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("recovery code %d already used", id)
	}
	return nil
}
