package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"

	"github.com/njangihq/zkauth/config"
	"github.com/njangihq/zkauth/service"
	"github.com/njangihq/zkauth/storage"
	"github.com/njangihq/zkauth/zklogin"
)

type Server struct {
	port        int64
	cfg         config.Config
	redis       recoveryThrottle
	sdClient    *statsd.Client
	logger      *logrus.Logger
	saltService *service.SaltService
	login       *zklogin.Service
	signer      *zklogin.Signer
}

// NewServer returns a new server.
func NewServer(cfg config.Config,
	redis *storage.RedisStorage,
	sdClient *statsd.Client,
	saltService *service.SaltService,
	login *zklogin.Service,
	signer *zklogin.Signer) *Server {
	s := &Server{
		port:        cfg.Server.Port,
		cfg:         cfg,
		sdClient:    sdClient,
		logger:      logrus.WithField("service", "api").Logger,
		saltService: saltService,
		login:       login,
		signer:      signer,
	}
	if redis != nil {
		s.redis = redis
	}
	return s
}

func (s *Server) StartServer() error {
	e := echo.New()
	e.Logger.SetLevel(log.INFO)
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K")) // identity tokens and proofs are small
	e.Use(s.statsdMiddleware)
	e.Use(middleware.CORS())
	limiterStore := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{Rate: 5, Burst: 30, ExpiresIn: 5 * time.Minute},
	)
	e.Use(middleware.RateLimiter(limiterStore))

	e.GET("/ping", s.Ping)
	e.POST("/get-salt", s.GetSalt)
	e.POST("/recover-salt", s.RecoverSalt)
	e.POST("/generate-recovery-code", s.GenerateRecoveryCode)

	loginGroup := e.Group("/login")
	loginGroup.POST("/begin", s.LoginBegin)
	loginGroup.POST("/callback", s.LoginCallback)

	e.POST("/transaction/send", s.SendTransaction)

	return e.Start(fmt.Sprintf(":%d", s.port))
}

func (s *Server) statsdMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		duration := time.Since(start).Milliseconds()

		_ = s.sdClient.Incr("http.requests", []string{"path:" + c.Path()}, 1)
		_ = s.sdClient.Timing("http.response_time", time.Duration(duration)*time.Millisecond, []string{"path:" + c.Path()}, 1)
		_ = s.sdClient.Incr("http.status."+fmt.Sprint(c.Response().Status), []string{"path:" + c.Path(), "method:" + c.Request().Method}, 1)

		return err
	}
}

func (s *Server) Ping(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}
