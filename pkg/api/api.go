package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abedul59/shjhs-class-system/pkg/apiresponses"
	"github.com/abedul59/shjhs-class-system/pkg/config"
	"github.com/abedul59/shjhs-class-system/pkg/metrics"
	"github.com/abedul59/shjhs-class-system/pkg/ratelimit"
	"github.com/abedul59/shjhs-class-system/pkg/system"
	"github.com/abedul59/shjhs-class-system/pkg/version"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

type APIController interface {
	BasePath() string
	Register(rg *gin.RouterGroup) error
	Handlers() []gin.HandlerFunc
}

type Server struct {
	gin     *gin.Engine
	config  config.Config
	log     *zap.SugaredLogger
	limiter *ratelimit.IPRateLimiter
}

func NewServer(log *zap.Logger, cfg config.Config, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	sugar := log.Sugar().Named("api")

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
	)
	if err := engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		sugar.Warnw("Invalid trusted proxies, trusting none", "proxies", cfg.Server.TrustedProxies, "error", err)
		_ = engine.SetTrustedProxies(nil)
	}

	origins := cfg.Server.AllowedOrigins
	if debug && len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if len(origins) > 0 {
		engine.Use(
			cors.New(cors.Config{
				AllowOrigins: origins,
				AllowMethods: []string{"GET", "POST", "OPTIONS"},
				AllowHeaders: []string{"Origin", "Content-Type", system.RequestIDHeader},
				MaxAge:       12 * time.Hour,
			}),
		)
	}

	s := &Server{
		gin:    engine,
		config: cfg,
		log:    sugar,
	}
	if !cfg.RateLimit.Disabled {
		rlCfg := ratelimit.DefaultAPIConfig()
		if cfg.RateLimit.Rate > 0 {
			rlCfg.Rate = cfg.RateLimit.Rate
		}
		if cfg.RateLimit.Burst > 0 {
			rlCfg.Burst = cfg.RateLimit.Burst
		}
		s.limiter = ratelimit.New(rlCfg)
	}

	engine.NoRoute(func(c *gin.Context) {
		apiresponses.RespondNotFoundSimple(c, "route not found")
	})
	engine.GET("healthz", s.getHealth)
	engine.GET("metrics", gin.WrapH(metrics.MetricsHandler()))
	engine.GET("api/version", s.getVersion)

	return s
}

// RegisterAll mounts each controller under /api/<BasePath>.
func (s *Server) RegisterAll(controllers []APIController) error {
	r := s.gin.Group("api", system.RequestLogger(s.log))
	if s.limiter != nil {
		r.Use(s.limiter.Middleware())
	}
	for _, c := range controllers {
		if err := c.Register(r.Group(c.BasePath(), c.Handlers()...)); err != nil {
			return fmt.Errorf("registering controller %s: %w", c.BasePath(), err)
		}
	}
	return nil
}

// Handler exposes the underlying engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.ListenAddress,
		Handler:           s.gin,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		tls := s.config.Server.TLSCertFile != "" && s.config.Server.TLSKeyFile != ""
		s.log.Infow("Starting HTTP server", "address", srv.Addr, "tls", tls)
		var err error
		if tls {
			err = srv.ListenAndServeTLS(s.config.Server.TLSCertFile, s.config.Server.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return <-errCh
}

// Close releases background resources such as the rate limiter cleanup goroutine.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetBuildInfo())
}
