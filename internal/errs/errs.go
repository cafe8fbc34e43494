package errs

import (
	"errors"
	"fmt"
)

// Sentinels for the closed set of failure categories surfaced to callers.
// Everything else stays a plain wrapped error.
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrClaimValidation      = errors.New("claim validation error")
	ErrSaltDecryption       = errors.New("salt decryption error")
	ErrProofAcquisition     = errors.New("proof acquisition error")
	ErrSessionExpired       = errors.New("session expired")
	ErrSignatureComposition = errors.New("signature composition error")
	ErrSubmission           = errors.New("submission error")
	ErrRecoveryCode         = errors.New("invalid or used recovery code")
)

func Configurationf(format string, args ...interface{}) error {
	return wrapf(ErrConfiguration, format, args...)
}

func ClaimValidationf(format string, args ...interface{}) error {
	return wrapf(ErrClaimValidation, format, args...)
}

func SaltDecryptionf(format string, args ...interface{}) error {
	return wrapf(ErrSaltDecryption, format, args...)
}

func ProofAcquisitionf(format string, args ...interface{}) error {
	return wrapf(ErrProofAcquisition, format, args...)
}

func SessionExpiredf(format string, args ...interface{}) error {
	return wrapf(ErrSessionExpired, format, args...)
}

func SignatureCompositionf(format string, args ...interface{}) error {
	return wrapf(ErrSignatureComposition, format, args...)
}

func Submissionf(format string, args ...interface{}) error {
	return wrapf(ErrSubmission, format, args...)
}

func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
