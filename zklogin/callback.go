package zklogin

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"

	"github.com/sirupsen/logrus"

	"github.com/njangihq/zkauth/internal/claims"
	"github.com/njangihq/zkauth/internal/errs"
	"github.com/njangihq/zkauth/internal/types"
)

// HandleCallback consumes the identity token returned by the provider
// together with the setup data retained across the redirect, and produces
// the AccountData capability for this session. Claim validation happens
// before any network call.
func (s *Service) HandleCallback(ctx context.Context, token string, setup *types.EphemeralSessionSetup) (*types.AccountData, error) {
	if err := setup.IsValid(); err != nil {
		return nil, errs.ClaimValidationf("invalid setup data: %v", err)
	}
	idToken, err := claims.Decode(token)
	if err != nil {
		return nil, err
	}
	clientID, err := s.clientIDFor(setup.Provider)
	if err != nil {
		return nil, err
	}
	if err := idToken.Validate(clientID); err != nil {
		return nil, err
	}

	privBytes, err := base64.StdEncoding.DecodeString(setup.EphemeralPrivateKey)
	if err != nil {
		return nil, errs.ClaimValidationf("fail to decode ephemeral private key: %v", err)
	}
	if len(privBytes) != ed25519.PrivateKeySize {
		return nil, errs.ClaimValidationf("ephemeral private key must be %d bytes, got %d",
			ed25519.PrivateKeySize, len(privBytes))
	}
	priv := ed25519.PrivateKey(privBytes)
	pub := priv.Public().(ed25519.PublicKey)

	saltResult, err := s.salts.GetOrCreateSalt(ctx, token, clientID)
	if err != nil {
		return nil, err
	}

	sub := idToken.Subject
	aud := idToken.PrimaryAudience(clientID)

	seed, err := AddressSeed(saltResult.Salt, KeyClaimName, sub, aud)
	if err != nil {
		return nil, errs.SignatureCompositionf("fail to derive address seed: %v", err)
	}
	address := DeriveAddress(idToken.Issuer, seed)

	proof, err := s.prover.FetchProof(ctx, ProofRequest{
		MaxEpoch:                   setup.MaxEpoch,
		JwtRandomness:              setup.Randomness,
		ExtendedEphemeralPublicKey: ExtendedEphemeralPublicKey(pub),
		Jwt:                        token,
		Salt:                       saltResult.Salt,
		KeyClaimName:               KeyClaimName,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"provider": setup.Provider,
		"address":  address,
		"maxEpoch": setup.MaxEpoch,
	}).Info("login completed")

	return &types.AccountData{
		Provider:            setup.Provider,
		Address:             address,
		Proof:               *proof,
		EphemeralPrivateKey: setup.EphemeralPrivateKey,
		UserSalt:            saltResult.Salt,
		Sub:                 sub,
		Aud:                 aud,
		MaxEpoch:            setup.MaxEpoch,
		Email:               idToken.Email,
		Name:                idToken.Name,
		Picture:             idToken.Picture,
	}, nil
}
