package api

import (
	"net/http"

	"github.com/bookabite/reservations/internal/auth"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Log          *zap.Logger
	Verifier     auth.TokenVerifier
	RateLimiter  *RateLimiter
	Reservations *ReservationHandler
	TimeSlots    *TimeSlotHandler
	Health       *HealthHandler
	// SwaggerSpec is a path to an OpenAPI document; empty disables the docs UI.
	SwaggerSpec string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(deps.Log), RequestLogger(deps.Log))
	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Middleware())
	}

	if deps.Health != nil {
		deps.Health.Register(router)
	}
	if deps.SwaggerSpec != "" {
		router.GET("/openapi.yaml", func(c *gin.Context) { c.File(deps.SwaggerSpec) })
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.yaml"))))
	}

	authed := router.Group("/", Authenticate(deps.Verifier))
	deps.Reservations.Register(authed.Group("/reservations"))
	deps.TimeSlots.Register(authed.Group("/timeslots"))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "route not found", Code: "NOT_FOUND"})
	})
	return router
}
