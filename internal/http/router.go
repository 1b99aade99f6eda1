package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/cqox-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cqox-backend/internal/http/middleware"
	"github.com/yungbote/cqox-backend/internal/observability"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler  *httpH.HealthHandler
	ResultsHandler *httpH.ResultsHandler
	OutcomeHandler *httpH.OutcomeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	users := api.Group("/users/:user_id")
	{
		// Outcomes
		if cfg.OutcomeHandler != nil {
			users.POST("/episodes/:episode_id/outcome", cfg.OutcomeHandler.RecordOutcome)
		}

		// Estimates
		if cfg.ResultsHandler != nil {
			users.GET("/treatment-effects", cfg.ResultsHandler.ListTreatmentEffects)
			users.GET("/path-summary", cfg.ResultsHandler.GetPathSummary)
			users.GET("/path-partners", cfg.ResultsHandler.ListPathPartners)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})
	return r
}
