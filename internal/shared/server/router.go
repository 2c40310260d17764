package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workshop-backend/internal/shared/config"
	"workshop-backend/internal/shared/metrics"
	"workshop-backend/internal/shared/server/middleware"
	"workshop-backend/internal/shared/server/respond"
	"workshop-backend/internal/workshop"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config   config.Config
	Workshop *workshop.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.Workshop != nil {
		deps.Workshop.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
