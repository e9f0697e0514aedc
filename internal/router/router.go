package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/medagenda/clinic-api/internal/handler"
	"github.com/medagenda/clinic-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Router assembles the HTTP surface. Routes fall into three rings:
// public (auth, billing webhooks), authenticated (clinic management),
// and clinic-scoped (everything keyed by X-Clinic-ID).
type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	authH        Handler
	billingH     Handler
	clinicH      Handler
	doctorH      Handler
	patientH     Handler
	appointmentH Handler
	dashboardH   Handler
	h            *handler.Handler
	metrics      *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimit     middleware.RateLimiterConfig
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH Handler,
	billingH Handler,
	clinicH Handler,
	doctorH Handler,
	patientH Handler,
	appointmentH Handler,
	dashboardH Handler,
	h *handler.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidations()

	engine := gin.New()

	r := &Router{
		engine:       engine,
		auth:         auth,
		authH:        authH,
		billingH:     billingH,
		clinicH:      clinicH,
		doctorH:      doctorH,
		patientH:     patientH,
		appointmentH: appointmentH,
		dashboardH:   dashboardH,
		h:            h,
		metrics:      initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.RequestID(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(config.RateLimit)
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)

	// Public routes. The billing webhook authenticates by payload
	// signature, not by bearer token.
	r.authH.RegisterRoutes(api)
	r.billingH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.clinicH.RegisterRoutes(protected)

	scoped := protected.Group("")
	scoped.Use(r.auth.ClinicScope())
	r.doctorH.RegisterRoutes(scoped)
	r.patientH.RegisterRoutes(scoped)
	r.appointmentH.RegisterRoutes(scoped)
	r.dashboardH.RegisterRoutes(scoped)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		errorTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_errors_total",
			Help: "Total HTTP error responses",
		}, []string{"method", "path", "status"}),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			status := fmt.Sprintf("%d", c.Writer.Status())
			path := c.FullPath()
			if path == "" {
				path = "unmatched"
			}
			r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(v)
			r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
			if c.Writer.Status() >= 400 {
				r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, status).Inc()
			}
		}))
		defer timer.ObserveDuration()
		c.Next()
	}
}
