package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter registers every route with CORS for the given origins.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
		}))
	}

	r.GET("/health", h.Health)
	r.POST("/run-agent", h.RunAgent)
	r.GET("/get-trends", h.GetTrends)
	r.POST("/update-status", h.UpdateStatus)
	r.GET("/stats", h.GetStats)
	r.GET("/export", h.Export)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Endpoint not found"})
	})
	return r
}
