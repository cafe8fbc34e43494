package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port int64
	}

	Database struct {
		// Backend selects the salt store implementation at startup:
		// "postgres" for multi-instance deployments, "sqlite" for a
		// single-process embedded file.
		Backend string
		DSN     string
	}

	Encryption struct {
		// KeySource is "file" or "env". The key-management policy is
		// explicit configuration, not a runtime environment sniff.
		KeySource string
		KeyFile   string
		KeyEnv    string
	}

	Redis struct {
		Host     string
		Port     string
		User     string
		Password string
		DB       int
	}

	Providers Providers

	Chain struct {
		RpcURL      string
		EpochWindow uint64
	}

	Prover struct {
		URL string
	}

	EmailServer struct {
		Enabled       bool
		ApiKey        string
		TemplateName  string
		SendingDomain string
	}

	Datadog struct {
		Host string
		Port string
	}
}

type Providers struct {
	RedirectURI string
	Google      OAuthProvider
	Facebook    OAuthProvider
	Twitch      OAuthProvider
}

type OAuthProvider struct {
	ClientID string
}

func ReadConfig(name string) (Config, error) {
	var cfg Config
	viper.SetConfigName(name)
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("fail to read config file, err: %w", err)
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("fail to unmarshal config, err: %w", err)
	}
	if cfg.Chain.EpochWindow == 0 {
		cfg.Chain.EpochWindow = 2
	}
	return cfg, nil
}
