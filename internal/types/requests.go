package types

import "fmt"

type GetSaltRequest struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
}

func (r *GetSaltRequest) IsValid() error {
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	return nil
}

type GetSaltResponse struct {
	Salt            string `json:"salt"`
	RecoveryCode    string `json:"recoveryCode,omitempty"`
	RecoveryMessage string `json:"recoveryMessage,omitempty"`
}

type RecoverSaltRequest struct {
	Token        string `json:"token"`
	ClientID     string `json:"client_id"`
	RecoveryCode string `json:"recoveryCode"`
}

func (r *RecoverSaltRequest) IsValid() error {
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	if r.RecoveryCode == "" {
		return fmt.Errorf("recoveryCode is required")
	}
	return nil
}

type RecoverSaltResponse struct {
	Salt    string `json:"salt"`
	Message string `json:"message"`
}

type GenerateRecoveryCodeRequest struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
}

func (r *GenerateRecoveryCodeRequest) IsValid() error {
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	return nil
}

type GenerateRecoveryCodeResponse struct {
	RecoveryCode string `json:"recoveryCode"`
	Message      string `json:"message"`
}

type LoginBeginRequest struct {
	Provider string `json:"provider"`
}

func (r *LoginBeginRequest) IsValid() error {
	if r.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	return nil
}

// LoginBeginResponse carries the setup data back to the client, which must
// retain it until the provider redirects back. The server keeps no copy.
type LoginBeginResponse struct {
	LoginURL string                `json:"loginUrl"`
	Setup    EphemeralSessionSetup `json:"setup"`
}

type LoginCallbackRequest struct {
	Token string                `json:"token"`
	Setup EphemeralSessionSetup `json:"setup"`
}

func (r *LoginCallbackRequest) IsValid() error {
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	if err := r.Setup.IsValid(); err != nil {
		return fmt.Errorf("invalid setup: %w", err)
	}
	return nil
}

type SendTransactionRequest struct {
	Account       AccountData   `json:"account"`
	Target        string        `json:"target"`
	TypeArguments []string      `json:"typeArguments"`
	Arguments     []interface{} `json:"arguments"`
	GasBudget     uint64        `json:"gasBudget"`
}

func (r *SendTransactionRequest) IsValid() error {
	if r.Target == "" {
		return fmt.Errorf("target is required")
	}
	return nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}
