// Package server assembles the HTTP router and the gRPC health endpoint.
package server

import (
	"context"
	"net/http"
	"time"

	cataloghandler "github.com/fekuna/omnipos-warehouse/internal/catalog/handler"
	"github.com/fekuna/omnipos-warehouse/internal/httpx"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/middleware"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/fekuna/omnipos-warehouse/internal/session"
	sessionhandler "github.com/fekuna/omnipos-warehouse/internal/session/handler"
	workspacehandler "github.com/fekuna/omnipos-warehouse/internal/workspace/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const probeTimeout = 5 * time.Second

// Probe reports whether the row store is reachable.
type Probe func(ctx context.Context) error

// StoreProbe reads the smallest collection as a liveness check.
func StoreProbe(s rowstore.Store) Probe {
	return func(ctx context.Context) error {
		_, err := s.Read(ctx, rowstore.Categories)
		return err
	}
}

type Handlers struct {
	Session   *sessionhandler.SessionHandler
	Catalog   *cataloghandler.CatalogHandler
	Workspace *workspacehandler.WorkspaceHandler
}

type RouterConfig struct {
	AllowedOrigins []string
	Debug          bool
}

func NewRouter(cfg *RouterConfig, sessions session.UseCase, resp *httpx.Responder, h *Handlers, probe Probe, log logger.ZapLogger) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestLogger(log), cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()
		if err := probe(ctx); err != nil {
			log.Warn("health probe failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/login", h.Session.Login)

	authed := api.Group("", middleware.AuthRequired(sessions, resp))
	authed.POST("/auth/logout", h.Session.Logout)
	h.Catalog.Register(authed)
	h.Workspace.Register(authed)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", "X-Confirm"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "Allow"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
