package zklogin

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/njangihq/zkauth/chain"
	"github.com/njangihq/zkauth/internal/errs"
	"github.com/njangihq/zkauth/internal/types"
)

// transaction data signing intent: scope, version, app id
var txIntent = []byte{0, 0, 0}

// Signer runs the per-transaction state machine:
// Validate -> Sign -> ComposeZkSignature -> Submit -> Interpret.
type Signer struct {
	chain  *chain.Client
	logger *logrus.Logger
}

func NewSigner(chainClient *chain.Client) *Signer {
	return &Signer{
		chain:  chainClient,
		logger: logrus.WithField("service", "signer").Logger,
	}
}

// SendTransaction builds, signs and submits one transaction on behalf of the
// account. The epoch guard runs first on every attempt; an expired session
// is never silently renewed, the caller must restart the login flow.
func (s *Signer) SendTransaction(ctx context.Context, account *types.AccountData, build func(tx *chain.Transaction) error) (*types.TxResult, error) {
	if err := account.IsValid(); err != nil {
		return nil, errs.SignatureCompositionf("invalid account data: %v", err)
	}

	epoch, err := s.chain.CurrentEpoch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail to read current epoch, err: %w", err)
	}
	if epoch >= account.MaxEpoch {
		return nil, errs.SessionExpiredf("current epoch %d >= max epoch %d", epoch, account.MaxEpoch)
	}

	privBytes, err := base64.StdEncoding.DecodeString(account.EphemeralPrivateKey)
	if err != nil || len(privBytes) != ed25519.PrivateKeySize {
		return nil, errs.SignatureCompositionf("invalid ephemeral private key")
	}
	priv := ed25519.PrivateKey(privBytes)
	pub := priv.Public().(ed25519.PublicKey)

	tx := chain.NewTransaction(account.Address)
	if err := build(tx); err != nil {
		return nil, fmt.Errorf("fail to build transaction, err: %w", err)
	}
	txBytes, err := tx.Serialize()
	if err != nil {
		return nil, fmt.Errorf("fail to serialize transaction, err: %w", err)
	}

	userSignature := signTransaction(priv, pub, txBytes)

	zkSignature, err := composeZkSignature(account, userSignature)
	if err != nil {
		return nil, err
	}

	resp, err := s.chain.ExecuteTransaction(ctx,
		base64.StdEncoding.EncodeToString(txBytes), []string{zkSignature})
	if err != nil {
		return nil, categorizeSubmissionError(err)
	}

	result := &types.TxResult{
		Digest:  resp.Digest,
		Success: resp.Effects.Status.Status == "success",
		GasUsed: types.GasUsed{
			ComputationCost:         resp.Effects.GasUsed.ComputationCost,
			StorageCost:             resp.Effects.GasUsed.StorageCost,
			StorageRebate:           resp.Effects.GasUsed.StorageRebate,
			NonRefundableStorageFee: resp.Effects.GasUsed.NonRefundableStorageFee,
		},
	}
	if !result.Success {
		result.Error = resp.Effects.Status.Error
	}

	s.logger.WithFields(logrus.Fields{
		"digest":  result.Digest,
		"success": result.Success,
		"sender":  account.Address,
	}).Info("transaction executed")

	return result, nil
}

// signTransaction signs the intent-prefixed transaction digest with the
// ephemeral key and renders the flag||signature||pubkey wire form.
func signTransaction(priv ed25519.PrivateKey, pub ed25519.PublicKey, txBytes []byte) string {
	message := make([]byte, 0, len(txIntent)+len(txBytes))
	message = append(message, txIntent...)
	message = append(message, txBytes...)
	digest := blake2b.Sum256(message)

	sig := ed25519.Sign(priv, digest[:])

	buf := make([]byte, 0, 1+len(sig)+len(pub))
	buf = append(buf, ephemeralKeyFlag)
	buf = append(buf, sig...)
	buf = append(buf, pub...)
	return base64.StdEncoding.EncodeToString(buf)
}

type zkSignatureInputs struct {
	ProofPoints      types.ProofPoints      `json:"proofPoints"`
	IssBase64Details types.IssBase64Details `json:"issBase64Details"`
	HeaderBase64     string                 `json:"headerBase64"`
	AddressSeed      string                 `json:"addressSeed"`
	MaxEpoch         uint64                 `json:"maxEpoch"`
	UserSignature    string                 `json:"userSignature"`
}

// composeZkSignature combines the normalized proof, the address seed and the
// ephemeral signature into the final composite login signature.
func composeZkSignature(account *types.AccountData, userSignature string) (string, error) {
	normalized, err := NormalizeProofPoints(account.Proof.ProofPoints)
	if err != nil {
		return "", err
	}
	seed, err := AddressSeed(account.UserSalt, KeyClaimName, account.Sub, account.Aud)
	if err != nil {
		return "", errs.SignatureCompositionf("fail to derive address seed: %v", err)
	}

	inputs := zkSignatureInputs{
		ProofPoints:      *normalized,
		IssBase64Details: account.Proof.IssBase64Details,
		HeaderBase64:     account.Proof.HeaderBase64,
		AddressSeed:      seed.String(),
		MaxEpoch:         account.MaxEpoch,
		UserSignature:    userSignature,
	}
	encoded, err := json.Marshal(inputs)
	if err != nil {
		return "", errs.SignatureCompositionf("fail to marshal signature inputs: %v", err)
	}

	buf := make([]byte, 0, 1+len(encoded))
	buf = append(buf, zkLoginSignatureFlag)
	buf = append(buf, encoded...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// categorizeSubmissionError remaps network failures into the closed error
// taxonomy. Anything unrecognized stays a generic submission error rather
// than being given a misleading category.
func categorizeSubmissionError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "epoch"):
		return errs.SessionExpiredf("%v", err)
	case strings.Contains(msg, "proof"):
		return errs.SignatureCompositionf("%v", err)
	case strings.Contains(msg, "gas") || strings.Contains(msg, "balance"):
		return errs.Submissionf("insufficient gas: %v", err)
	case strings.Contains(msg, "signature"):
		return errs.Submissionf("signature verification failed: %v", err)
	default:
		return errs.Submissionf("%v", err)
	}
}
