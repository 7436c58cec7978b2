// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reclaim/internal/http/handlers"
	"reclaim/internal/http/middleware"
	"reclaim/internal/modules/catalog"
	"reclaim/internal/modules/fleet"
	"reclaim/internal/modules/lifecycle"
)

type RouterDeps struct {
	Lifecycle *lifecycle.Service
	Fleet     *fleet.Service
	Catalog   *catalog.Catalog
	Log       *zap.Logger

	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(deps.Log),
		middleware.Recovery(deps.Log),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api/v1")
	api.Use(
		middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst, deps.Log),
		middleware.Actor(),
	)

	bookingHandler := handlers.NewBookingHandler(deps.Lifecycle)
	recordHandler := handlers.NewRecordHandler(deps.Lifecycle)
	api.POST("/bookings", bookingHandler.Create)
	api.GET("/bookings", bookingHandler.List)
	api.GET("/bookings/:id", bookingHandler.Get)
	api.POST("/bookings/:id/assign", bookingHandler.Assign)
	api.POST("/bookings/:id/status", bookingHandler.Transition)
	api.POST("/bookings/:id/approve", bookingHandler.Approve)
	api.GET("/bookings/:id/completion", bookingHandler.Completion)
	api.GET("/bookings/:id/impact", bookingHandler.Impact)
	api.GET("/bookings/:id/history", bookingHandler.History)
	api.GET("/bookings/:id/records", recordHandler.List)
	api.POST("/bookings/:id/assets/:assetId/grade", recordHandler.Grade)
	api.POST("/bookings/:id/assets/:assetId/sanitisations", recordHandler.Sanitise)
	api.POST("/sanitisations/:id/verify", recordHandler.Verify)

	jobHandler := handlers.NewJobHandler(deps.Lifecycle)
	api.GET("/jobs/:id", jobHandler.Get)
	api.POST("/jobs/:id/status", jobHandler.Transition)
	api.POST("/jobs/:id/evidence", jobHandler.SubmitEvidence)
	api.POST("/jobs/:id/advance", jobHandler.Advance)

	driverHandler := handlers.NewDriverHandler(deps.Fleet)
	api.GET("/drivers", driverHandler.List)
	api.POST("/drivers", driverHandler.Register)
	api.GET("/drivers/:id", driverHandler.Get)

	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
	api.GET("/catalog/categories", catalogHandler.Categories)

	return r
}
