package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/pipeline"
)

// Server serves the pipeline operations.
type Server struct {
	svc        *pipeline.Service
	logger     *zap.Logger
	apiKey     string
	actionBase string
	router     *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey requires the X-API-KEY header on every route but /health.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithActionBaseURL prefixes the update links of the HTML article listing.
// Links are relative to this server by default.
func WithActionBaseURL(u string) Option {
	return func(s *Server) { s.actionBase = u }
}

// New creates a Server for svc.
func New(svc *pipeline.Service, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger))
	router.SetHTMLTemplate(template.Must(template.New("articles").Parse(articlesTemplate)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/")
	api.Use(apiKeyAuthMiddleware(s.apiKey))
	api.GET("/metrics", gin.WrapH(s.svc.Metrics().Handler()))
	api.GET("/nhk/summary", s.handleSummary)
	api.GET("/nhk/articles", s.handleArticles)
	api.POST("/patients/update", s.handleUpdatePatients)
	api.GET("/patients/update", s.handleUpdatePatient)
	api.GET("/mhlw/port", s.handlePort)
	api.GET("/mhlw/recoveries", s.handleRecoveries)
	api.GET("/verify", s.handleVerify)
	return router
}

func apiKeyAuthMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// Run serves on addr until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
