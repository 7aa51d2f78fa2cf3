package routes

import (
	"net/http"

	"github.com/Ahmad-FikriA/ai-food-detection/controllers"
	"github.com/Ahmad-FikriA/ai-food-detection/metrics"
	"github.com/Ahmad-FikriA/ai-food-detection/middlewares"
	"github.com/Ahmad-FikriA/ai-food-detection/views"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Scan      *controllers.ScanController
	Foods     *controllers.FoodController
	Realtime  *controllers.RealtimeController
	Metrics   *metrics.Metrics
	JWTSecret string
	UploadDir string // served at /uploads when set
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(views.Templates())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	// Upload page
	r.GET("/", d.Scan.Index)
	r.POST("/", d.Scan.Upload)

	// JSON API, token-protected when a secret is configured
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(d.JWTSecret))
	{
		api.POST("/scan", d.Scan.ScanAPI)
		api.GET("/nutrition/:name", d.Scan.LookupNutrition)
		if d.Foods != nil {
			api.GET("/foods", d.Foods.SearchFoods)
		}
		if d.Realtime != nil {
			api.GET("/scans/ws", d.Realtime.ScansWS)
		}
	}

	return r
}
