package zklogin

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/njangihq/zkauth/chain"
	"github.com/njangihq/zkauth/common"
	"github.com/njangihq/zkauth/config"
	"github.com/njangihq/zkauth/internal/errs"
	"github.com/njangihq/zkauth/internal/types"
)

// SaltSource is the slice of the salt service the login flow needs.
type SaltSource interface {
	GetOrCreateSalt(ctx context.Context, token, clientID string) (*types.SaltResult, error)
}

// Service runs the login lifecycle: ephemeral session setup before the OAuth
// redirect and proof acquisition plus address derivation after it. It holds
// only stateless clients; all per-login state travels in the setup data the
// caller retains.
type Service struct {
	chain       *chain.Client
	prover      *ProverClient
	salts       SaltSource
	providers   config.Providers
	epochWindow uint64
	logger      *logrus.Logger
}

func NewService(chainClient *chain.Client, prover *ProverClient, salts SaltSource, providers config.Providers, epochWindow uint64) *Service {
	return &Service{
		chain:       chainClient,
		prover:      prover,
		salts:       salts,
		providers:   providers,
		epochWindow: epochWindow,
		logger:      logrus.WithField("service", "zklogin").Logger,
	}
}

// BeginLogin constructs a nonce-bound ephemeral keypair tied to the current
// epoch window and the provider login URL carrying that nonce. The returned
// setup data must be held by the caller until the provider redirects back;
// the server keeps no copy.
func (s *Service) BeginLogin(ctx context.Context, provider string) (*types.LoginBeginResponse, error) {
	clientID, err := s.clientIDFor(provider)
	if err != nil {
		return nil, err
	}
	if s.providers.RedirectURI == "" {
		return nil, errs.Configurationf("redirect uri is not configured")
	}

	epoch, err := s.chain.CurrentEpoch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail to read current epoch, err: %w", err)
	}
	maxEpoch := epoch + s.epochWindow

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("fail to generate ephemeral keypair, err: %w", err)
	}
	randomness, err := common.RandomBigInt(16)
	if err != nil {
		return nil, err
	}

	nonce, err := Nonce(pub, maxEpoch, randomness.String())
	if err != nil {
		return nil, fmt.Errorf("fail to derive nonce, err: %w", err)
	}

	loginURL := s.loginURL(provider, clientID, nonce)

	s.logger.WithFields(logrus.Fields{
		"provider": provider,
		"maxEpoch": maxEpoch,
	}).Info("ephemeral session prepared")

	return &types.LoginBeginResponse{
		LoginURL: loginURL,
		Setup: types.EphemeralSessionSetup{
			Provider:            provider,
			MaxEpoch:            maxEpoch,
			Randomness:          randomness.String(),
			EphemeralPrivateKey: base64.StdEncoding.EncodeToString(priv),
		},
	}, nil
}

// clientIDFor fails fast on a missing client id rather than producing a
// malformed authorization URL.
func (s *Service) clientIDFor(provider string) (string, error) {
	var clientID string
	switch strings.ToLower(provider) {
	case "google":
		clientID = s.providers.Google.ClientID
	case "facebook":
		clientID = s.providers.Facebook.ClientID
	case "twitch":
		clientID = s.providers.Twitch.ClientID
	default:
		return "", errs.Configurationf("unknown provider %q", provider)
	}
	if clientID == "" {
		return "", errs.Configurationf("client id for provider %q is not configured", provider)
	}
	return clientID, nil
}

func (s *Service) loginURL(provider, clientID, nonce string) string {
	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("redirect_uri", s.providers.RedirectURI)
	params.Set("response_type", "id_token")
	params.Set("scope", "openid")
	params.Set("nonce", nonce)

	switch strings.ToLower(provider) {
	case "google":
		return "https://accounts.google.com/o/oauth2/v2/auth?" + params.Encode()
	case "facebook":
		return "https://www.facebook.com/v17.0/dialog/oauth?" + params.Encode()
	default: // twitch, validated upstream
		params.Set("force_verify", "true")
		return "https://id.twitch.tv/oauth2/authorize?" + params.Encode()
	}
}
