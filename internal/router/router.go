package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/agenda-api/internal/handler/auth"
	"github.com/jwalitptl/agenda-api/internal/handler/cita"
	"github.com/jwalitptl/agenda-api/internal/handler/especialidad"
	"github.com/jwalitptl/agenda-api/internal/handler/funcionario"
	"github.com/jwalitptl/agenda-api/internal/handler/health"
	"github.com/jwalitptl/agenda-api/internal/handler/paciente"
	promhandler "github.com/jwalitptl/agenda-api/internal/handler/prometheus"
	"github.com/jwalitptl/agenda-api/internal/handler/rbac"
	"github.com/jwalitptl/agenda-api/internal/handler/segmento"
	"github.com/jwalitptl/agenda-api/internal/middleware"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

type Handlers struct {
	Health       *health.Handler
	Auth         *auth.Handler
	Especialidad *especialidad.Handler
	Funcionario  *funcionario.Handler
	Rbac         *rbac.Handler
	Paciente     *paciente.Handler
	Segmento     *segmento.Handler
	Cita         *cita.Handler
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	RequestTimeout   time.Duration
	HSTSMaxAge       int
	// Gatherer backs /metrics. Nil leaves the route out.
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	h       Handlers
	config  RouterConfig
	limiter *middleware.RateLimiter
}

func NewRouter(auth *middleware.AuthMiddleware, h Handlers, config RouterConfig) (*Router, error) {
	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	r := &Router{
		engine: engine,
		auth:   auth,
		h:      h,
		config: config,
	}
	if config.RateLimitEnabled {
		r.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(config.Metrics),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		middleware.CORS(config.CORSConfig),
	)

	return r, nil
}

func (r *Router) Setup() {
	r.h.Health.RegisterRoutes(r.engine.Group(""))
	if r.config.Gatherer != nil {
		promhandler.New(r.config.Gatherer).RegisterRoutes(r.engine)
	}

	api := r.engine.Group("/api")
	api.Use(middleware.SecurityHeaders(r.config.HSTSMaxAge))
	if r.limiter != nil {
		api.Use(r.limiter.RateLimit())
	}
	api.Use(middleware.Timeout(r.config.RequestTimeout))

	r.setupPublicRoutes(api)
	r.setupProtectedRoutes(api)
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	r.h.Especialidad.RegisterRoutes(rg)
	r.h.Auth.RegisterRoutes(rg, r.auth)
}

// Protected handlers attach Authenticate and their role guards per group.
func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.h.Funcionario.RegisterRoutes(rg, r.auth)
	r.h.Rbac.RegisterRoutes(rg, r.auth)
	r.h.Paciente.RegisterRoutes(rg, r.auth)
	r.h.Segmento.RegisterRoutes(rg, r.auth)
	r.h.Cita.RegisterRoutes(rg, r.auth)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Limiter is nil when rate limiting is disabled.
func (r *Router) Limiter() *middleware.RateLimiter {
	return r.limiter
}
