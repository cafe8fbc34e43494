package zklogin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/njangihq/zkauth/internal/errs"
	"github.com/njangihq/zkauth/internal/types"
)

// ProofRequest is the external prover's fixed request contract.
type ProofRequest struct {
	MaxEpoch                   uint64 `json:"maxEpoch"`
	JwtRandomness              string `json:"jwtRandomness"`
	ExtendedEphemeralPublicKey string `json:"extendedEphemeralPublicKey"`
	Jwt                        string `json:"jwt"`
	Salt                       string `json:"salt"`
	KeyClaimName               string `json:"keyClaimName"`
}

// ProverClient calls the external zero-knowledge proving service. The
// service is an opaque dependency; its failures are surfaced verbatim to aid
// debugging.
type ProverClient struct {
	url        string
	httpClient *http.Client
}

func NewProverClient(url string) *ProverClient {
	return &ProverClient{
		url: url,
		httpClient: &http.Client{
			// proving is slow, give it room
			Timeout: 2 * time.Minute,
		},
	}
}

// FetchProof exchanges the identity token plus salt for a proof and
// validates the returned bundle's shape before handing it back.
func (p *ProverClient) FetchProof(ctx context.Context, req ProofRequest) (*types.ZkProof, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("fail to marshal proof request, err: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fail to build proof request, err: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, errs.ProofAcquisitionf("fail to call prover, err: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.ProofAcquisitionf("fail to read prover response, err: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.ProofAcquisitionf("prover returned %s: %s", resp.Status, string(raw))
	}

	var proof types.ZkProof
	if err := json.Unmarshal(raw, &proof); err != nil {
		return nil, errs.ProofAcquisitionf("fail to unmarshal proof, err: %v", err)
	}
	if err := proof.Validate(); err != nil {
		return nil, errs.ProofAcquisitionf("malformed proof: %v", err)
	}
	return &proof, nil
}
