package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	testCases := []struct {
		err      error
		sentinel error
	}{
		{Configurationf("missing client id for %q", "google"), ErrConfiguration},
		{ClaimValidationf("missing sub"), ErrClaimValidation},
		{SaltDecryptionf("bad tag"), ErrSaltDecryption},
		{ProofAcquisitionf("prover returned 503"), ErrProofAcquisition},
		{SessionExpiredf("epoch %d >= %d", 5, 5), ErrSessionExpired},
		{SignatureCompositionf("scalar proof point"), ErrSignatureComposition},
		{Submissionf("fullnode unreachable"), ErrSubmission},
	}

	for _, tc := range testCases {
		assert.True(t, errors.Is(tc.err, tc.sentinel), "%v must match its sentinel", tc.err)
		assert.Contains(t, tc.err.Error(), tc.sentinel.Error())
	}
}

func TestCategoriesAreDistinct(t *testing.T) {
	err := SessionExpiredf("epoch 5 >= 5")
	assert.False(t, errors.Is(err, ErrSubmission))
	assert.False(t, errors.Is(err, ErrClaimValidation))
}
