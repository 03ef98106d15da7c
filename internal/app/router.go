package app

import (
	"glucogard_backend/docs"
	"glucogard_backend/internal/config"
	"glucogard_backend/internal/middleware"
	"glucogard_backend/internal/model"
	"glucogard_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// Authenticated routes
	authed := router.Group("/api")
	authed.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authed.GET("/me", c.auth.Me)

		screening := authed.Group("/screening")
		{
			screening.GET("/flow", c.screening.GetFlow)
			screening.POST("/start", c.screening.Start)
			screening.POST("/advance", c.screening.Advance)
			screening.POST("/validate", c.screening.Validate)
			screening.POST("/submit", c.screening.Submit)
			screening.PUT("/draft", c.screening.SaveDraft)
			screening.GET("/draft", c.screening.GetDraft)
			screening.DELETE("/draft", c.screening.DeleteDraft)
			screening.GET("/history", c.screening.History)
			screening.GET("/latest", c.screening.Latest)
		}

		authed.GET("/dashboard", c.dashboard.Patient)

		clinician := authed.Group("")
		clinician.Use(middleware.RoleMiddleware(model.Clinician))
		{
			clinician.GET("/dashboard/population", c.dashboard.Population)
		}

		admin := authed.Group("")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.POST("/research/export", c.research.Export)
		}
	}
}
