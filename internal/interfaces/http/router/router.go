// Package router assembles the gin engine and versioned API surface.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wms/inventory/internal/infrastructure/logger"
	"github.com/wms/inventory/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface handlers implement to hang their
// routes on the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds router configuration
type Config struct {
	ServiceName    string
	APIVersion     string
	CORS           middleware.CORSConfig
	TracingEnabled bool
}

// DefaultConfig returns default router configuration
func DefaultConfig() Config {
	return Config{
		ServiceName: "wms-inventory",
		APIVersion:  "v1",
		CORS:        middleware.DefaultCORSConfig(),
	}
}

// Router manages the engine and HTTP route registration
type Router struct {
	engine     *gin.Engine
	config     Config
	registrars []RouteRegistrar
}

// New builds a gin engine with the standard middleware chain: request
// ids first so every later layer can correlate, then tracing, logging,
// CORS and security headers.
func New(cfg Config, log *zap.Logger) *Router {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v1"
	}

	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	if cfg.TracingEnabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.Secure())

	return &Router{
		engine: engine,
		config: cfg,
	}
}

// Register adds a RouteRegistrar to be wired on Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine and returns it
func (r *Router) Setup() *gin.Engine {
	api := r.engine.Group("/api/" + r.config.APIVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return r.engine
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
