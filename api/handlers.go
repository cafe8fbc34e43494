package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/njangihq/zkauth/chain"
	"github.com/njangihq/zkauth/internal/errs"
	"github.com/njangihq/zkauth/internal/types"
)

const (
	recoveryAttemptWindow = time.Hour
	recoveryAttemptLimit  = 10

	recoveryCodeMessage = "Store this recovery code somewhere safe. It is shown only once and is the only way to recover your wallet if you lose access to this device."
)

func (s *Server) GetSalt(c echo.Context) error {
	var req types.GetSaltRequest
	if err := c.Bind(&req); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("fail to parse request: %v", err))
	}
	if err := req.IsValid(); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("invalid request: %v", err))
	}
	s.incCounter("salt.get", nil)

	result, err := s.saltService.GetOrCreateSalt(c.Request().Context(), req.Token, req.ClientID)
	if err != nil {
		return s.jsonError(c, err)
	}

	resp := types.GetSaltResponse{Salt: result.Salt}
	if result.Created {
		resp.RecoveryCode = result.RecoveryCode
		resp.RecoveryMessage = recoveryCodeMessage
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) RecoverSalt(c echo.Context) error {
	var req types.RecoverSaltRequest
	if err := c.Bind(&req); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("fail to parse request: %v", err))
	}
	if err := req.IsValid(); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("invalid request: %v", err))
	}
	s.incCounter("salt.recover", nil)

	if s.throttled(c) {
		s.incCounter("salt.recover.throttled", nil)
		return c.JSON(http.StatusTooManyRequests, types.ErrorResponse{
			Error: "too many recovery attempts, try again later",
		})
	}

	salt, err := s.saltService.RecoverSalt(c.Request().Context(), req.Token, req.ClientID, req.RecoveryCode)
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, types.RecoverSaltResponse{
		Salt:    salt,
		Message: "Salt recovered. The recovery code has been consumed; generate a new one.",
	})
}

func (s *Server) GenerateRecoveryCode(c echo.Context) error {
	var req types.GenerateRecoveryCodeRequest
	if err := c.Bind(&req); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("fail to parse request: %v", err))
	}
	if err := req.IsValid(); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("invalid request: %v", err))
	}
	s.incCounter("salt.recovery_code.generate", nil)

	code, err := s.saltService.GenerateRecoveryCode(c.Request().Context(), req.Token, req.ClientID)
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, types.GenerateRecoveryCodeResponse{
		RecoveryCode: code,
		Message:      recoveryCodeMessage,
	})
}

func (s *Server) LoginBegin(c echo.Context) error {
	var req types.LoginBeginRequest
	if err := c.Bind(&req); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("fail to parse request: %v", err))
	}
	if err := req.IsValid(); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("invalid request: %v", err))
	}
	s.incCounter("login.begin", []string{"provider:" + req.Provider})

	resp, err := s.login.BeginLogin(c.Request().Context(), req.Provider)
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) LoginCallback(c echo.Context) error {
	var req types.LoginCallbackRequest
	if err := c.Bind(&req); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("fail to parse request: %v", err))
	}
	if err := req.IsValid(); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("invalid request: %v", err))
	}
	s.incCounter("login.callback", []string{"provider:" + req.Setup.Provider})

	account, err := s.login.HandleCallback(c.Request().Context(), req.Token, &req.Setup)
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, account)
}

func (s *Server) SendTransaction(c echo.Context) error {
	var req types.SendTransactionRequest
	if err := c.Bind(&req); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("fail to parse request: %v", err))
	}
	if err := req.IsValid(); err != nil {
		return s.jsonError(c, errs.ClaimValidationf("invalid request: %v", err))
	}
	s.incCounter("transaction.send", nil)

	result, err := s.signer.SendTransaction(c.Request().Context(), &req.Account, func(tx *chain.Transaction) error {
		tx.MoveCall(req.Target, req.TypeArguments, req.Arguments...)
		if req.GasBudget > 0 {
			tx.SetGasBudget(req.GasBudget)
		}
		return nil
	})
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// recoveryThrottle is the slice of redis storage the attempt cap needs.
type recoveryThrottle interface {
	CountRecoveryAttempt(ctx context.Context, key string, window time.Duration) (int64, error)
}

// throttled caps recovery attempts per caller; recovery codes are the one
// guessable secret this service holds hashes of. Fails open when the
// counter is unavailable.
func (s *Server) throttled(c echo.Context) bool {
	if s.redis == nil {
		return false
	}
	count, err := s.redis.CountRecoveryAttempt(c.Request().Context(), c.RealIP(), recoveryAttemptWindow)
	if err != nil {
		s.logger.Errorf("fail to count recovery attempt, err: %v", err)
		return false
	}
	return count > recoveryAttemptLimit
}

func (s *Server) incCounter(name string, tags []string) {
	if err := s.sdClient.Count(name, 1, tags, 1); err != nil {
		s.logger.Errorf("fail to count metric, err: %v", err)
	}
}

// jsonError resolves every failure into a JSON body with the right status.
// Claim problems are the client's to fix; decryption and submission problems
// are not.
func (s *Server) jsonError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrClaimValidation),
		errors.Is(err, errs.ErrRecoveryCode),
		errors.Is(err, errs.ErrConfiguration),
		errors.Is(err, errs.ErrSignatureComposition):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrSessionExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, errs.ErrSaltDecryption):
		s.logger.WithFields(logrus.Fields{
			"path":  c.Path(),
			"error": err,
		}).Error("salt decryption failure, operator attention required")
		status = http.StatusInternalServerError
	case errors.Is(err, errs.ErrProofAcquisition),
		errors.Is(err, errs.ErrSubmission):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.logger.Errorf("request failed: %v", err)
	}
	return c.JSON(status, types.ErrorResponse{Error: fmt.Sprintf("%v", err)})
}
