// Package web serves the JSON API over the inventory services.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/toolasset/internal/cachemanager"
	"github.com/zjrosen/toolasset/internal/catalog"
	"github.com/zjrosen/toolasset/internal/inventory/application"
	"github.com/zjrosen/toolasset/internal/inventory/domain"
	"github.com/zjrosen/toolasset/internal/log"
	"github.com/zjrosen/toolasset/internal/tracing"
)

const labelsCacheKey = "labels"

// Options configures the server.
type Options struct {
	Addr string
	// LabelCacheTTL bounds how long dictionary labels are served from
	// memory; zero disables the cache.
	LabelCacheTTL time.Duration
	// TracerProvider enables request spans when non-nil.
	TracerProvider trace.TracerProvider
}

// Server is the HTTP front end.
type Server struct {
	engine *gin.Engine
	svc    *application.Services
	dict   *catalog.Dictionary
	labels *cachemanager.ReadThroughCache[string, *domain.Labels, struct{}]
	opts   Options
}

// New builds the router. Call gin.SetMode before New to change the mode.
func New(svc *application.Services, dict *catalog.Dictionary, opts Options) *Server {
	s := &Server{svc: svc, dict: dict, opts: opts}

	cache := cachemanager.NewInMemoryCacheManager[string, *domain.Labels]("labels",
		cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	s.labels = cachemanager.NewReadThroughCache[string, *domain.Labels, struct{}](cache,
		func(ctx context.Context, _ struct{}) (*domain.Labels, error) {
			return svc.Audit.Labels(ctx)
		},
		opts.LabelCacheTTL,
	)

	engine := gin.New()
	if opts.TracerProvider != nil {
		engine.Use(otelgin.Middleware(tracing.ServiceName, otelgin.WithTracerProvider(opts.TracerProvider)))
	}
	engine.Use(RequestID(), Logger(), Recovery())
	s.engine = engine
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api")
	{
		api.GET("/layers", s.listLayers)
		api.GET("/categories", s.listCategories)
		api.GET("/labels", s.getLabels)
	}

	parts := api.Group("/parts")
	{
		parts.GET("", s.listParts)
		parts.POST("", s.addPart)
		parts.GET("/:code", s.getPart)
		parts.PATCH("/:code", s.updatePart)
		parts.POST("/:code/archive", s.archivePart)
		parts.POST("/:code/restore", s.restorePart)
		parts.GET("/:code/history", s.history(domain.TargetPart))
	}

	assemblies := api.Group("/assemblies")
	{
		assemblies.GET("", s.listAssemblies)
		assemblies.POST("", s.addAssembly)
		assemblies.GET("/:code", s.getAssembly)
		assemblies.PATCH("/:code", s.updateAssembly)
		assemblies.GET("/:code/items", s.listAssemblyItems)
		assemblies.POST("/:code/items", s.addAssemblyItem)
		assemblies.DELETE("/:code/items/:item_id", s.removeAssemblyItem)
		assemblies.GET("/:code/signature", s.getSignature)
		assemblies.POST("/:code/signature", s.applySignature)
		assemblies.GET("/:code/history", s.history(domain.TargetAssembly))
	}

	lists := api.Group("/tooling-lists")
	{
		lists.GET("", s.listToolingLists)
		lists.POST("", s.addToolingList)
		lists.GET("/:code", s.getToolingList)
		lists.PATCH("/:code", s.updateToolingList)
		lists.GET("/:code/items", s.listToolingListItems)
		lists.POST("/:code/items", s.addToolingListItem)
		lists.PUT("/:code/items", s.replaceToolingListItems)
		lists.DELETE("/:code/items/:item_id", s.removeToolingListItem)
		lists.GET("/:code/history", s.history(domain.TargetToolingList))
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(log.CatWeb, "listening", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info(log.CatWeb, "shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
