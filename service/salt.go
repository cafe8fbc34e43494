package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/njangihq/zkauth/common"
	"github.com/njangihq/zkauth/config"
	"github.com/njangihq/zkauth/internal/claims"
	"github.com/njangihq/zkauth/internal/crypto"
	"github.com/njangihq/zkauth/internal/errs"
	"github.com/njangihq/zkauth/internal/tasks"
	"github.com/njangihq/zkauth/internal/types"
	"github.com/njangihq/zkauth/storage"
)

// SaltService owns the "one salt per identity forever" policy: a salt is
// created on first login for a (sub, aud) pair and never changes afterwards,
// which is what keeps the user's derived address stable across logins.
type SaltService struct {
	cfg         config.Config
	store       storage.SaltStore
	cipher      *crypto.Cipher
	queueClient *asynq.Client
	logger      *logrus.Logger
}

// NewSaltService creates the salt service. queueClient may be nil when no
// email delivery is configured.
func NewSaltService(cfg config.Config, store storage.SaltStore, cipher *crypto.Cipher, queueClient *asynq.Client) *SaltService {
	return &SaltService{
		cfg:         cfg,
		store:       store,
		cipher:      cipher,
		queueClient: queueClient,
		logger:      logrus.WithField("service", "salt").Logger,
	}
}

// GetOrCreateSalt returns the identity's salt, creating it on first login.
// A decryption failure on an existing record is a hard error; fabricating a
// replacement salt would silently reassign the user's address.
func (s *SaltService) GetOrCreateSalt(ctx context.Context, token, clientID string) (*types.SaltResult, error) {
	idToken, err := claims.Decode(token)
	if err != nil {
		return nil, err
	}
	if err := idToken.Validate(clientID); err != nil {
		return nil, err
	}
	sub := idToken.Subject
	aud := idToken.PrimaryAudience(clientID)

	record, err := s.store.GetSalt(ctx, sub, aud)
	if err != nil {
		return nil, fmt.Errorf("fail to look up salt, err: %w", err)
	}
	if record != nil {
		salt, err := s.cipher.Decrypt(record.SaltEncrypted, record.IV, record.Tag)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"salt_id": record.ID,
				"error":   err,
			}).Error("stored salt failed to decrypt, refusing to mint a replacement")
			return nil, err
		}
		return &types.SaltResult{Salt: string(salt)}, nil
	}

	salt, err := common.RandomSalt()
	if err != nil {
		return nil, err
	}
	saltStr := salt.String()

	ciphertext, iv, tag, err := s.cipher.Encrypt([]byte(saltStr))
	if err != nil {
		return nil, fmt.Errorf("fail to encrypt salt, err: %w", err)
	}
	saltID, err := s.store.UpsertSalt(ctx, sub, aud, ciphertext, iv, tag)
	if err != nil {
		return nil, fmt.Errorf("fail to persist salt, err: %w", err)
	}

	// A concurrent first login may have won the upsert; re-read so both
	// sessions hand back the same salt.
	record, err = s.store.GetSalt(ctx, sub, aud)
	if err != nil {
		return nil, fmt.Errorf("fail to re-read salt, err: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("salt %d disappeared after upsert", saltID)
	}
	stored, err := s.cipher.Decrypt(record.SaltEncrypted, record.IV, record.Tag)
	if err != nil {
		return nil, err
	}
	saltStr = string(stored)

	code, err := s.issueRecoveryCode(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	s.enqueueRecoveryCodeEmail(idToken, code)

	s.logger.WithFields(logrus.Fields{
		"salt_id": record.ID,
	}).Info("created salt for new identity")

	return &types.SaltResult{
		Salt:         saltStr,
		Created:      true,
		RecoveryCode: code,
	}, nil
}

// RecoverSalt exchanges an unused recovery code for the identity's salt and
// consumes the code. The salt is keyed on the caller's client id when
// supplied, matching GetOrCreateSalt. The code is consumed only after the
// salt has decrypted; a decryption failure must not burn the user's code.
func (s *SaltService) RecoverSalt(ctx context.Context, token, clientID, recoveryCode string) (string, error) {
	idToken, err := claims.Decode(token)
	if err != nil {
		return "", err
	}
	if err := idToken.Validate(clientID); err != nil {
		return "", err
	}
	sub := idToken.Subject
	aud := idToken.PrimaryAudience(clientID)

	saltID, err := s.store.GetSaltID(ctx, sub, aud)
	if err != nil {
		return "", fmt.Errorf("fail to look up salt id, err: %w", err)
	}
	if saltID == 0 {
		return "", errs.ErrRecoveryCode
	}

	match, err := s.store.GetUnusedRecoveryCode(ctx, saltID, common.HashRecoveryCode(recoveryCode))
	if err != nil {
		return "", fmt.Errorf("fail to look up recovery code, err: %w", err)
	}
	if match == nil {
		return "", errs.ErrRecoveryCode
	}

	record, err := s.store.GetSalt(ctx, sub, aud)
	if err != nil {
		return "", fmt.Errorf("fail to load salt, err: %w", err)
	}
	if record == nil {
		return "", fmt.Errorf("salt %d disappeared during recovery", saltID)
	}
	salt, err := s.cipher.Decrypt(record.SaltEncrypted, record.IV, record.Tag)
	if err != nil {
		return "", err
	}

	if err := s.store.MarkRecoveryCodeUsed(ctx, match.ID); err != nil {
		return "", fmt.Errorf("fail to consume recovery code, err: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"salt_id": saltID,
		"code_id": match.ID,
	}).Info("recovery code consumed")

	return string(salt), nil
}

// GenerateRecoveryCode issues an additional code for an existing salt
// holder, keyed the same way as GetOrCreateSalt. Earlier unused codes stay
// valid.
func (s *SaltService) GenerateRecoveryCode(ctx context.Context, token, clientID string) (string, error) {
	idToken, err := claims.Decode(token)
	if err != nil {
		return "", err
	}
	if err := idToken.Validate(clientID); err != nil {
		return "", err
	}

	saltID, err := s.store.GetSaltID(ctx, idToken.Subject, idToken.PrimaryAudience(clientID))
	if err != nil {
		return "", fmt.Errorf("fail to look up salt id, err: %w", err)
	}
	if saltID == 0 {
		return "", errs.ClaimValidationf("no salt exists for this identity")
	}

	code, err := s.issueRecoveryCode(ctx, saltID)
	if err != nil {
		return "", err
	}
	s.enqueueRecoveryCodeEmail(idToken, code)
	return code, nil
}

func (s *SaltService) issueRecoveryCode(ctx context.Context, saltID int64) (string, error) {
	code, err := common.NewRecoveryCode()
	if err != nil {
		return "", err
	}
	if err := s.store.InsertRecoveryCode(ctx, saltID, common.HashRecoveryCode(code)); err != nil {
		return "", fmt.Errorf("fail to store recovery code hash, err: %w", err)
	}
	return code, nil
}

func (s *SaltService) enqueueRecoveryCodeEmail(idToken *claims.IDToken, code string) {
	if s.queueClient == nil || !s.cfg.EmailServer.Enabled || idToken.Email == "" {
		return
	}
	payload := tasks.RecoveryCodeEmailPayload{
		TaskID: uuid.New().String(),
		Email:  idToken.Email,
		Name:   idToken.Name,
		Code:   code,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		s.logger.Errorf("fail to marshal email payload, err: %v", err)
		return
	}
	_, err = s.queueClient.Enqueue(asynq.NewTask(tasks.TypeRecoveryCodeEmail, buf),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
		asynq.Retention(10*time.Minute),
		asynq.Queue(tasks.QUEUE_NAME))
	if err != nil {
		// email delivery is best effort, the caller already holds the code
		s.logger.Errorf("fail to enqueue recovery code email, err: %v", err)
	}
}
