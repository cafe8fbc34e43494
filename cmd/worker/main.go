package main

import (
	"fmt"
	"log"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/njangihq/zkauth/config"
	"github.com/njangihq/zkauth/internal/tasks"
	"github.com/njangihq/zkauth/service"
)

func main() {
	cfg, err := config.ReadConfig("config")
	if err != nil {
		log.Fatalf("fail to read config, err: %v", err)
	}

	logger := logrus.WithField("service", "worker").Logger

	sdClient, err := statsd.New(fmt.Sprintf("%s:%s", cfg.Datadog.Host, cfg.Datadog.Port))
	if err != nil {
		logger.Fatalf("fail to create statsd client, err: %v", err)
	}

	redisAddr := cfg.Redis.Host + ":" + cfg.Redis.Port
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Username: cfg.Redis.User,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.QUEUE_NAME: 10,
			},
		},
	)

	workerService, err := service.NewWorker(cfg, sdClient)
	if err != nil {
		logger.Fatalf("fail to create worker service, err: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"redis": redisAddr,
	}).Info("Starting worker")

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRecoveryCodeEmail, workerService.HandleRecoveryCodeEmail)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run worker: %v", err)
	}
}
