package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/jobs"
	"jobtracker-backend/internal/services/health"
	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
	"jobtracker-backend/internal/uploads"
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config         config.Config
	JobsHandler    *jobs.Handler
	UploadsHandler *uploads.Handler
	Health         *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	if deps.Config.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(rateLimitConfig(deps.Config)))
	}

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil, "", deps.Config.ObjectStoreType)
	}
	api.GET("/health", func(c *gin.Context) {
		status := healthSvc.Status(c.Request.Context())
		code := http.StatusOK
		if ok, _ := status["ok"].(bool); !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	if deps.JobsHandler != nil {
		deps.JobsHandler.RegisterRoutes(api)
	}
	if deps.UploadsHandler != nil {
		deps.UploadsHandler.RegisterRoutes(r)
	}

	return r
}

// rateLimitConfig gives reads four times the write budget.
func rateLimitConfig(cfg config.Config) middleware.RateLimitConfig {
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	return middleware.RateLimitConfig{
		DefaultGroup: "WRITE",
		GroupFor: func(c *gin.Context) string {
			switch c.Request.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return "READ"
			default:
				return "WRITE"
			}
		},
		Rules: map[string]middleware.RateLimitRule{
			"WRITE": {Rate: cfg.RateLimitRPS, Burst: burst},
			"READ":  {Rate: cfg.RateLimitRPS * 4, Burst: burst * 4},
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
