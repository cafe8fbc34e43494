package types

import "time"

// SaltRecord is one encrypted salt row, unique per (sub, aud). The decrypted
// salt value never changes once created; changing it would silently move the
// user's derived address.
type SaltRecord struct {
	ID            int64     `db:"id"`
	Sub           string    `db:"sub"`
	Aud           string    `db:"aud"`
	SaltEncrypted []byte    `db:"salt_encrypted"`
	IV            []byte    `db:"iv"`
	Tag           []byte    `db:"tag"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// RecoveryCode stores only the one-way hash of a code. A code is consumed at
// most once; UsedAt is set when it is.
type RecoveryCode struct {
	ID        int64      `db:"id"`
	SaltID    int64      `db:"salt_id"`
	CodeHash  string     `db:"code_hash"`
	CreatedAt time.Time  `db:"created_at"`
	UsedAt    *time.Time `db:"used_at"`
}

// SaltResult is what the salt service hands back. RecoveryCode is populated
// exactly once, on first creation or explicit regeneration; it is never
// stored in plaintext anywhere.
type SaltResult struct {
	Salt         string
	Created      bool
	RecoveryCode string
}
