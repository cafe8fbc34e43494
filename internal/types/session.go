package types

import "fmt"

// EphemeralSessionSetup is created at login-begin time and held by the
// client across the OAuth redirect. It is never persisted server-side; it is
// the only secret binding the returning identity token to this specific
// ephemeral key.
type EphemeralSessionSetup struct {
	Provider            string `json:"provider"`
	MaxEpoch            uint64 `json:"maxEpoch"`
	Randomness          string `json:"randomness"`
	EphemeralPrivateKey string `json:"ephemeralPrivateKey"`
}

func (s *EphemeralSessionSetup) IsValid() error {
	if s.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if s.MaxEpoch == 0 {
		return fmt.Errorf("maxEpoch is required")
	}
	if s.Randomness == "" {
		return fmt.Errorf("randomness is required")
	}
	if s.EphemeralPrivateKey == "" {
		return fmt.Errorf("ephemeralPrivateKey is required")
	}
	return nil
}

// ProofPoints are the three groth16 proof point groups. Every entry of B is
// a 2-element pair; a bare scalar there means the proof is corrupt.
type ProofPoints struct {
	A []string   `json:"a"`
	B [][]string `json:"b"`
	C []string   `json:"c"`
}

type IssBase64Details struct {
	Value     string `json:"value"`
	IndexMod4 int    `json:"indexMod4"`
}

// ZkProof is the bundle returned by the external prover.
type ZkProof struct {
	ProofPoints      ProofPoints      `json:"proofPoints"`
	IssBase64Details IssBase64Details `json:"issBase64Details"`
	HeaderBase64     string           `json:"headerBase64"`
}

// Validate checks the structural shape of the proof. Malformed shapes fail
// fast here instead of being coerced downstream.
func (p *ZkProof) Validate() error {
	if len(p.ProofPoints.A) == 0 {
		return fmt.Errorf("proof points 'a' must not be empty")
	}
	if len(p.ProofPoints.B) == 0 {
		return fmt.Errorf("proof points 'b' must not be empty")
	}
	for i, pair := range p.ProofPoints.B {
		if len(pair) != 2 {
			return fmt.Errorf("proof points 'b' entry %d must have exactly 2 elements, got %d", i, len(pair))
		}
	}
	if len(p.ProofPoints.C) == 0 {
		return fmt.Errorf("proof points 'c' must not be empty")
	}
	if p.IssBase64Details.Value == "" {
		return fmt.Errorf("issBase64Details value must not be empty")
	}
	if p.HeaderBase64 == "" {
		return fmt.Errorf("headerBase64 must not be empty")
	}
	return nil
}

// AccountData is a capability token: any holder can sign transactions for
// Address until MaxEpoch is reached. MaxEpoch must be validated against the
// current network epoch before every use.
type AccountData struct {
	Provider            string  `json:"provider"`
	Address             string  `json:"address"`
	Proof               ZkProof `json:"zkProofs"`
	EphemeralPrivateKey string  `json:"ephemeralPrivateKey"`
	UserSalt            string  `json:"userSalt"`
	Sub                 string  `json:"sub"`
	Aud                 string  `json:"aud"`
	MaxEpoch            uint64  `json:"maxEpoch"`

	// optional display profile, straight from the identity token
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

func (a *AccountData) IsValid() error {
	if a.EphemeralPrivateKey == "" {
		return fmt.Errorf("ephemeralPrivateKey is required")
	}
	if err := a.Proof.Validate(); err != nil {
		return fmt.Errorf("invalid proof: %w", err)
	}
	if a.UserSalt == "" {
		return fmt.Errorf("userSalt is required")
	}
	if a.Sub == "" {
		return fmt.Errorf("sub is required")
	}
	if a.Aud == "" {
		return fmt.Errorf("aud is required")
	}
	if a.Address == "" {
		return fmt.Errorf("address is required")
	}
	if a.MaxEpoch == 0 {
		return fmt.Errorf("maxEpoch is required")
	}
	return nil
}

// GasUsed is the gas breakdown from on-chain effects.
type GasUsed struct {
	ComputationCost         string `json:"computationCost"`
	StorageCost             string `json:"storageCost"`
	StorageRebate           string `json:"storageRebate"`
	NonRefundableStorageFee string `json:"nonRefundableStorageFee"`
}

// TxResult is the normalized outcome of one transaction submission. Success
// is derived from the transaction's on-chain effects status, not from the
// absence of a transport error.
type TxResult struct {
	Digest  string  `json:"digest"`
	Success bool    `json:"success"`
	GasUsed GasUsed `json:"gasUsed"`
	Error   string  `json:"error,omitempty"`
}
