package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/njangihq/zkauth/config"
	"github.com/njangihq/zkauth/contexthelper"
	"github.com/njangihq/zkauth/internal/tasks"
	"github.com/njangihq/zkauth/storage"
)

type WorkerService struct {
	cfg      config.Config
	redis    *storage.RedisStorage
	logger   *logrus.Logger
	sdClient *statsd.Client
}

// NewWorker creates a new worker service
func NewWorker(cfg config.Config, sdClient *statsd.Client) (*WorkerService, error) {
	redis, err := storage.NewRedisStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage.NewRedisStorage failed: %w", err)
	}

	return &WorkerService{
		cfg:      cfg,
		redis:    redis,
		logger:   logrus.WithField("service", "worker").Logger,
		sdClient: sdClient,
	}, nil
}

func (s *WorkerService) incCounter(name string, tags []string) {
	if err := s.sdClient.Count(name, 1, tags, 1); err != nil {
		s.logger.Errorf("fail to count metric, err: %v", err)
	}
}

func (s *WorkerService) measureTime(name string, start time.Time, tags []string) {
	if err := s.sdClient.Timing(name, time.Since(start), tags, 1); err != nil {
		s.logger.Errorf("fail to measure time metric, err: %v", err)
	}
}

// HandleRecoveryCodeEmail delivers a freshly issued recovery code to the
// account's email address via the mandrill template API.
func (s *WorkerService) HandleRecoveryCodeEmail(ctx context.Context, t *asynq.Task) error {
	if err := contexthelper.CheckCancellation(ctx); err != nil {
		return err
	}
	defer s.measureTime("worker.recovery_code.email.latency", time.Now(), []string{})
	s.incCounter("worker.recovery_code.email", []string{})

	var req tasks.RecoveryCodeEmailPayload
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		s.logger.Errorf("json.Unmarshal failed: %v", err)
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if req.Email == "" || req.Code == "" {
		return fmt.Errorf("email and code are required: %w", asynq.SkipRetry)
	}

	fresh, err := s.redis.MarkEmailSent(ctx, req.TaskID, 24*time.Hour)
	if err != nil {
		s.logger.Errorf("fail to check email dedup, err: %v", err)
	} else if !fresh {
		s.logger.WithFields(logrus.Fields{
			"task_id": req.TaskID,
		}).Info("recovery code email already sent, skipping")
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"email":   req.Email,
		"task_id": req.TaskID,
	}).Info("sending recovery code email")

	emailServer := "https://mandrillapp.com/api/1.0/messages/send-template"
	mergeVars := []MandrilMergeVarContent{
		{
			Name:    "RECOVERY_CODE",
			Content: req.Code,
		},
		{
			Name:    "USER_NAME",
			Content: req.Name,
		},
	}
	payload := MandrillPayload{
		Key:             s.cfg.EmailServer.ApiKey,
		TemplateName:    s.cfg.EmailServer.TemplateName,
		TemplateContent: mergeVars,
		Message: MandrillMessage{
			To: []MandrillTo{
				{
					Email: req.Email,
					Type:  "to",
				},
			},
			MergeVars: []MandrillVar{
				{
					Rcpt: req.Email,
					Vars: mergeVars,
				},
			},
			SendingDomain: s.cfg.EmailServer.SendingDomain,
		},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		s.logger.Errorf("json.Marshal failed: %v", err)
		return fmt.Errorf("json.Marshal failed: %v: %w", err, asynq.SkipRetry)
	}
	resp, err := http.Post(emailServer, "application/json", bytes.NewReader(payloadBytes))
	if err != nil {
		s.logger.Errorf("http.Post failed: %v", err)
		return fmt.Errorf("http.Post failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Errorf("failed to close body: %v", err)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		s.logger.Errorf("http.Post failed: %s", resp.Status)
		return fmt.Errorf("http.Post failed: %s: %w", resp.Status, asynq.SkipRetry)
	}
	result, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Errorf("io.ReadAll failed: %v", err)
		return nil
	}
	s.logger.WithFields(logrus.Fields{
		"response": string(result),
	}).Info("recovery code email sent")
	return nil
}
