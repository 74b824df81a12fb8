package server

import (
	"time"

	"github.com/gin-gonic/gin"
	ginlogrus "github.com/toorop/gin-logrus"

	"github.com/mowind/rdsauth-go/internal/config"
	apperrors "github.com/mowind/rdsauth-go/internal/errors"
	"github.com/mowind/rdsauth-go/internal/token"
)

// Builder assembles a sidecar server.
type Builder struct {
	cfg    *config.Config
	minter *token.Minter
}

// NewBuilder creates a server builder.
func NewBuilder(cfg *config.Config, minter *token.Minter) *Builder {
	return &Builder{cfg: cfg, minter: minter}
}

// Build constructs the server with its router, logger and middleware chain.
func (b *Builder) Build() (*Server, error) {
	b.setGinMode()

	logger, err := apperrors.NewLogger(&apperrors.LoggerConfig{
		Level:  b.cfg.Log.Level,
		Format: b.cfg.Log.Format,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeConfig, "failed to build logger")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(ginlogrus.Logger(logger))
	if b.cfg.HTTP.APIKey != "" {
		router.Use(AuthMiddleware(true, b.cfg.HTTP.APIKey, []string{"/health"}))
	}

	s := &Server{
		config: b.cfg,
		router: router,
		logger: logger,
		minter: b.minter,
		now:    time.Now,
	}

	s.setupRoutes()
	return s, nil
}

// setGinMode keeps gin quiet outside of debug logging.
func (b *Builder) setGinMode() {
	if b.cfg.Log.Level == config.LogLevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}
