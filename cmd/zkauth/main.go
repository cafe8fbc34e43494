package main

import (
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/DataDog/datadog-go/statsd"

	"github.com/njangihq/zkauth/api"
	"github.com/njangihq/zkauth/chain"
	"github.com/njangihq/zkauth/config"
	"github.com/njangihq/zkauth/internal/crypto"
	"github.com/njangihq/zkauth/service"
	"github.com/njangihq/zkauth/storage"
	"github.com/njangihq/zkauth/zklogin"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.ReadConfig("config")
	if err != nil {
		log.Fatalf("fail to read config, err: %v", err)
	}

	logger := logrus.WithField("service", "zkauth").Logger

	sdClient, err := statsd.New(fmt.Sprintf("%s:%s", cfg.Datadog.Host, cfg.Datadog.Port))
	if err != nil {
		logger.Fatalf("fail to create statsd client, err: %v", err)
	}

	store, err := storage.NewStore(cfg)
	if err != nil {
		logger.Fatalf("fail to open salt store, err: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("fail to close salt store, err: %v", err)
		}
	}()

	cipher, err := crypto.NewCipher(keySource(cfg, logger))
	if err != nil {
		logger.Fatalf("fail to initialize encryption, err: %v", err)
	}

	redis, err := storage.NewRedisStorage(cfg)
	if err != nil {
		logger.Fatalf("fail to connect to redis, err: %v", err)
	}

	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	queueClient := asynq.NewClient(redisOpts)
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Errorf("fail to close queue client, err: %v", err)
		}
	}()

	saltService := service.NewSaltService(cfg, store, cipher, queueClient)

	chainClient := chain.NewClient(cfg.Chain.RpcURL)
	prover := zklogin.NewProverClient(cfg.Prover.URL)
	login := zklogin.NewService(chainClient, prover, saltService, cfg.Providers, cfg.Chain.EpochWindow)
	signer := zklogin.NewSigner(chainClient)

	server := api.NewServer(cfg, redis, sdClient, saltService, login, signer)
	if err := server.StartServer(); err != nil {
		logger.Fatalf("fail to start server, err: %v", err)
	}
}

func keySource(cfg config.Config, logger *logrus.Logger) crypto.KeySource {
	if cfg.Encryption.KeySource == "env" {
		return crypto.EnvKeySource{Var: cfg.Encryption.KeyEnv, Logger: logger}
	}
	return crypto.FileKeySource{Path: cfg.Encryption.KeyFile}
}
