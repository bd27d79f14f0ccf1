/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/utils"
)

type Config struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	Environment     string        `json:"environment" yaml:"environment" mapstructure:"environment"` // dev, test, prod
	AllowOrigins    []string      `json:"allow_origins" yaml:"allow_origins" mapstructure:"allow_origins"`
	EnableMetrics   bool          `json:"enable_metrics" yaml:"enable_metrics" mapstructure:"enable_metrics"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		Environment:     "prod",
		AllowOrigins:    []string{"*"},
		EnableMetrics:   true,
		ShutdownTimeout: 5 * time.Second,
	}
}

type Server struct {
	cfg         Config
	engine      *gin.Engine
	inner       *http.Server
	logger      *logrus.Logger
	metrics     *Metrics
	healthCheck func(ctx context.Context) *database.HealthStatus
	stats       func() *database.DBStats
}

type Option func(*Server)

// WithHealthCheck replaces the global database health check behind /healthz.
func WithHealthCheck(fn func(ctx context.Context) *database.HealthStatus) Option {
	return func(s *Server) { s.healthCheck = fn }
}

// WithStats replaces the global database pool statistics exported as metrics.
func WithStats(fn func() *database.DBStats) Option {
	return func(s *Server) { s.stats = fn }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

func NewServer(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg:         cfg,
		logger:      utils.NewLogger("SERVER"),
		healthCheck: database.GetHealthStatus,
		stats:       database.GetDatabaseStats,
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(getGinMode(cfg.Environment))
	r := gin.New()
	r.Use(RequestID(), AccessLog(s.logger), Recovery(s.logger))
	r.Use(cors.New(corsConfig(cfg.AllowOrigins)))
	if cfg.EnableMetrics {
		s.metrics = NewMetrics(s.stats)
		r.Use(s.metrics.Middleware())
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	r.GET("/healthz", s.health)

	s.engine = r
	s.inner = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Engine exposes the router so resources can be mounted on it.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start serves until Stop is called; a clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Infof("listening on %s", s.cfg.Addr)
	if err := s.inner.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests, waiting at most ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("stopping server")
	return s.inner.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	status := s.healthCheck(c.Request.Context())
	code := http.StatusOK
	if status == nil || !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        5 * time.Minute,
	}
	origins = lo.Compact(lo.Map(origins, func(o string, _ int) string { return strings.TrimSpace(o) }))
	if len(origins) == 0 || lo.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func getGinMode(env string) string {
	switch env {
	case "dev":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
