package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/commissioner/pkg/api/handlers"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/device/schema"
)

// Deps are the services the router exposes. Dongles and Identities are optional.
type Deps struct {
	Scanner      device.Scanner
	Commissioner device.Commissioner
	Tracker      handlers.SessionTracker
	Events       device.EventSubscriber
	Validator    *schema.Validator
	Dongles      handlers.DongleDetector
	Identities   handlers.IdentityLister

	ScanDuration int      // Default scan dwell in seconds
	CORSOrigins  []string // "*" or empty allows every origin
	Logger       zerolog.Logger
}

// Router holds the Gin engine and dependencies
type Router struct {
	engine *gin.Engine
	deps   Deps
	server *http.Server
}

// NewRouter creates a new API router
func NewRouter(deps Deps) *Router {
	gin.SetMode(gin.ReleaseMode)

	if deps.Validator == nil {
		deps.Validator = schema.NewValidator()
	}

	engine := gin.New()
	SetupMiddleware(engine, deps.CORSOrigins, deps.Logger)

	router := &Router{engine: engine, deps: deps}
	router.setupRoutes()
	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	healthHandler := handlers.NewHealthHandler(r.deps.Scanner, r.deps.Commissioner, r.deps.Dongles, r.deps.Logger)
	r.engine.GET("/health", healthHandler.Health)

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		bt := handlers.NewBluetoothHandler(r.deps.Scanner, r.deps.Validator, r.deps.ScanDuration)
		v1.GET("/adapter", bt.Adapter)
		v1.POST("/scan", bt.Scan)
		devices := v1.Group("/devices")
		{
			devices.GET("/:address", bt.GetDevice)
			devices.POST("/:address/connect", bt.Connect)
			devices.POST("/:address/disconnect", bt.Disconnect)
		}

		ch := handlers.NewCommissioningHandler(r.deps.Tracker, r.deps.Commissioner, r.deps.Validator, r.deps.Identities)
		commissioning := v1.Group("/commissioning")
		{
			commissioning.POST("", ch.Start)
			commissioning.GET("", ch.List)
			commissioning.POST("/test-connection", ch.TestConnection)
			commissioning.POST("/transfer", ch.Transfer)
			commissioning.GET("/:id", ch.Get)
			commissioning.DELETE("/:id", ch.Cancel)
		}
		v1.GET("/identities", ch.Identities)

		eh := handlers.NewEventsHandler(r.deps.Events, r.deps.Logger)
		v1.GET("/events", eh.Events)
		v1.GET("/events/ws", eh.WebSocket)
	}
}

// Handler exposes the engine for tests and embedding.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (r *Router) Run(ctx context.Context, addr string) error {
	r.server = &http.Server{
		Addr:              addr,
		Handler:           r.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.server.Shutdown(shutdownCtx)
	}
}
