package storage

import (
	"context"

	"github.com/njangihq/zkauth/config"
	"github.com/njangihq/zkauth/internal/errs"
	"github.com/njangihq/zkauth/internal/types"
	"github.com/njangihq/zkauth/storage/postgres"
	"github.com/njangihq/zkauth/storage/sqlite"
)

// SaltStore is the persistence contract for encrypted salts and
// recovery-code hashes. Lookups return (nil, nil) on no match. UpsertSalt
// must never fork a salt: a conflicting insert keeps the existing ciphertext
// and returns the existing row id.
type SaltStore interface {
	Close() error

	GetSalt(ctx context.Context, sub, aud string) (*types.SaltRecord, error)
	UpsertSalt(ctx context.Context, sub, aud string, ciphertext, iv, tag []byte) (int64, error)
	GetSaltID(ctx context.Context, sub, aud string) (int64, error)

	InsertRecoveryCode(ctx context.Context, saltID int64, codeHash string) error
	GetUnusedRecoveryCode(ctx context.Context, saltID int64, codeHash string) (*types.RecoveryCode, error)
	MarkRecoveryCodeUsed(ctx context.Context, id int64) error
}

// NewStore selects the backend once at startup; business logic never
// branches on the deployment environment.
func NewStore(cfg config.Config) (SaltStore, error) {
	switch cfg.Database.Backend {
	case "postgres":
		return postgres.NewBackend(cfg.Database.DSN)
	case "sqlite":
		return sqlite.NewBackend(cfg.Database.DSN)
	default:
		return nil, errs.Configurationf("unknown database backend %q", cfg.Database.Backend)
	}
}
