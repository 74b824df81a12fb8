// Package server implements the token-vending sidecar.
//
// The sidecar exposes the signing pipeline over a small local HTTP API so
// that co-located processes can fetch database auth tokens without linking
// AWS credentials handling themselves. It vends live bearer credentials:
// bind it to loopback or put it behind the API-key middleware.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mowind/rdsauth-go/internal/config"
	apperrors "github.com/mowind/rdsauth-go/internal/errors"
	"github.com/mowind/rdsauth-go/internal/token"
)

// Server is the sidecar HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server
	logger *logrus.Logger
	minter *token.Minter

	// now is swappable for tests.
	now func() time.Time
}

// New creates a sidecar server from the given configuration.
func New(cfg *config.Config, minter *token.Minter) (*Server, error) {
	builder := NewBuilder(cfg, minter)
	return builder.Build()
}

// setupRoutes wires the API surface.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)
	s.router.POST("/token", s.tokenHandler)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// tokenResponse is the /token reply. The token itself appears only here,
// never in logs.
type tokenResponse struct {
	Token     string `json:"token"`
	User      string `json:"user"`
	Endpoint  string `json:"endpoint"`
	IssuedAt  string `json:"issued_at"`
	ExpiresAt string `json:"expires_at"`
}

// tokenHandler mints an auth token for the requested target. Fields omitted
// from the request fall back to the configured database target.
func (s *Server) tokenHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.logger.WithError(err).Error("failed to read request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	req, err := parseTokenRequest(body, &s.config.DB)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	ctx := apperrors.NewContextWithOperation(c.Request.Context(), "mint_token")

	s.logger.WithFields(apperrors.ContextFields(ctx)).WithFields(logrus.Fields{
		"user": req.User,
		"host": req.Host,
		"port": req.Port,
	}).Debug("minting auth token")

	authToken, err := s.minter.MintFor(ctx, req.User, req.Host, req.Port, s.now())
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		Token:     authToken.String(),
		User:      req.User,
		Endpoint:  fmt.Sprintf("%s:%d", req.Host, req.Port),
		IssuedAt:  authToken.IssuedAt().UTC().Format(time.RFC3339),
		ExpiresAt: authToken.ExpiresAt().UTC().Format(time.RFC3339),
	})
}

// abortWithError renders an error response, mapping AppErrors onto their
// HTTP status.
func (s *Server) abortWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		s.logger.WithFields(apperrors.ContextFields(c.Request.Context())).
			WithField("type", string(appErr.Type)).WithError(err).Warn("token request failed")
		c.JSON(appErr.HTTPStatus(), gin.H{
			"error": appErr.Message,
			"type":  string(appErr.Type),
		})
		return
	}
	s.logger.WithError(err).Error("token request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// Start begins serving in the background.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.HTTP.Host, s.config.HTTP.Port)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.WithFields(logrus.Fields{
		"host": s.config.HTTP.Host,
		"port": s.config.HTTP.Port,
	}).Info("starting token sidecar")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.logger.Info("shutting down token sidecar")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
