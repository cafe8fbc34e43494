package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/njangihq/zkauth/internal/errs"
)

// KeySource provides the 256-bit salt encryption key. Which source is in use
// is a configuration decision, never an implicit environment sniff.
type KeySource interface {
	Key() ([]byte, error)
}

// FileKeySource reads the key from a fixed path, generating and persisting a
// new random key on first run. Suited to long-lived server processes with a
// durable filesystem.
type FileKeySource struct {
	Path string
}

func (s FileKeySource) Key() ([]byte, error) {
	if s.Path == "" {
		return nil, errs.Configurationf("encryption key file path is not set")
	}
	content, err := os.ReadFile(s.Path)
	if err == nil {
		key, decErr := base64.StdEncoding.DecodeString(string(content))
		if decErr != nil {
			return nil, errs.Configurationf("fail to decode key file %s: %v", s.Path, decErr)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("fail to read key file, err: %w", err)
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("fail to generate key, err: %w", err)
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("fail to create key directory, err: %w", err)
		}
	}
	if err := os.WriteFile(s.Path, []byte(base64.StdEncoding.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("fail to persist key file, err: %w", err)
	}
	return key, nil
}

// EnvKeySource reads a base64 key from an environment variable. When the
// variable is unset it generates a key in-process and logs it exactly once
// so an operator can persist it externally; until that happens a restart
// strands every salt encrypted in the meantime.
type EnvKeySource struct {
	Var    string
	Logger *logrus.Logger
}

func (s EnvKeySource) Key() ([]byte, error) {
	if s.Var == "" {
		return nil, errs.Configurationf("encryption key environment variable name is not set")
	}
	if encoded := os.Getenv(s.Var); encoded != "" {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, errs.Configurationf("fail to decode key from %s: %v", s.Var, err)
		}
		return key, nil
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("fail to generate key, err: %w", err)
	}
	if s.Logger != nil {
		s.Logger.WithField("var", s.Var).
			Warnf("generated ephemeral encryption key, persist it or all new salts are lost on restart: %s",
				base64.StdEncoding.EncodeToString(key))
	}
	return key, nil
}
