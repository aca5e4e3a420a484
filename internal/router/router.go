package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	AllowedOrigins []string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	// Tracing enables otelgin request spans under ServiceName.
	Tracing     bool
	ServiceName string
	// Files serves stored images under FilesPrefix when set.
	Files       http.FileSystem
	FilesPrefix string
}

type Router struct {
	engine   *gin.Engine
	config   RouterConfig
	health   handler.Handler
	metricsH handler.Handler
	api      []handler.Handler
}

func NewRouter(
	logger zerolog.Logger,
	m *metrics.Metrics,
	health handler.Handler,
	metricsH handler.Handler,
	api []handler.Handler,
	config RouterConfig,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		config:   config,
		health:   health,
		metricsH: metricsH,
		api:      api,
	}

	if config.Tracing {
		engine.Use(otelgin.Middleware(config.ServiceName))
	}

	// Add core middlewares
	engine.Use(
		middleware.RequestID(logger),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.Metrics(m),
		middleware.SecurityHeaders(),
		middleware.CORS(config.AllowedOrigins),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httputil.Response{IsSuccess: false, Message: "Route not found."})
	})

	return r
}

func (r *Router) Setup() {
	if r.health != nil {
		r.health.RegisterRoutes(&r.engine.RouterGroup)
	}
	if r.metricsH != nil {
		r.metricsH.RegisterRoutes(&r.engine.RouterGroup)
	}

	if r.config.Files != nil {
		files := r.engine.Group("/"+strings.Trim(r.config.FilesPrefix, "/"), middleware.Immutable())
		files.StaticFS("/", r.config.Files)
	}

	api := r.engine.Group("/api/v1")

	// a zero rate disables limiting
	if r.config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  r.config.RateLimit,
			Burst: r.config.RateBurst,
		})
		api.Use(rateLimiter.RateLimit())
	}
	api.Use(
		middleware.SizeLimit(r.config.MaxBodyBytes),
		middleware.Timeout(r.config.RequestTimeout),
		middleware.NoStore(),
	)

	for _, h := range r.api {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
