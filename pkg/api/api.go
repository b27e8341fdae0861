package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/contenthub/postnotify/pkg/config"
	"github.com/contenthub/postnotify/pkg/metrics"
	"github.com/contenthub/postnotify/pkg/ratelimit"
)

type APIController interface {
	BasePath() string
	Register(rg *gin.RouterGroup) error
	Handlers() []gin.HandlerFunc
}

type Server struct {
	gin    *gin.Engine
	config config.Config
}

func NewServer(log *zap.Logger, cfg config.Config, limiter *ratelimit.IPRateLimiter) *Server {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
	)

	if len(cfg.Server.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.Server.TrustedProxies)
	}

	if cfg.Server.Debug {
		engine.Use(
			cors.New(cors.Config{
				AllowOrigins: []string{"http://localhost:5173", "127.0.0.1:8080"},
				AllowMethods: []string{"GET", "PUT", "PATCH", "POST", "OPTIONS"},
				AllowHeaders: []string{"Origin", "Authorization", "Content-Type"},
				MaxAge:       12 * time.Hour,
			}),
		)
	}

	if limiter != nil {
		engine.Use(limiter.Middleware())
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	return &Server{gin: engine, config: cfg}
}

func (s *Server) RegisterAll(controllers []APIController) error {
	r := s.gin.Group("api")
	for _, c := range controllers {
		if err := c.Register(r.Group(c.BasePath(), c.Handlers()...)); err != nil {
			return err
		}
	}
	return nil
}

// Engine exposes the underlying router for tests and embedding.
func (s *Server) Engine() *gin.Engine { return s.gin }

// Listen serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Listen(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.ListenAddress,
		Handler:           s.gin,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.config.Server.TLSCertFile != "" && s.config.Server.TLSKeyFile != "" {
			errCh <- srv.ListenAndServeTLS(s.config.Server.TLSCertFile, s.config.Server.TLSKeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
