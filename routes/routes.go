package routes

import (
	"net/http"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/controllers"
	"sim-talenta-gtk-api/middleware"
	"sim-talenta-gtk-api/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if config.App != nil && !config.App.Minio.Enabled() {
		router.Static("/uploads", config.App.UploadPath)
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/auth/login", controllers.Login)
			public.POST("/auth/refresh", controllers.Refresh)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"status":  "ok",
					"message": "SIM Talenta GTK API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/auth/logout", controllers.Logout)
			protected.GET("/auth/me", controllers.Me)

			protected.GET("/dashboard", controllers.GetDashboard)
			protected.POST("/upload", controllers.UploadEvidence)

			sekolah := protected.Group("/sekolah")
			{
				sekolah.GET("", controllers.GetSekolahList)
				sekolah.GET("/:id", controllers.GetSekolah)
				sekolah.POST("", middleware.RequireRole(models.RoleSuperAdmin), controllers.CreateSekolah)
				sekolah.PATCH("/:id", middleware.RequireRole(models.RoleSuperAdmin), controllers.UpdateSekolah)
				sekolah.DELETE("/:id", middleware.RequireRole(models.RoleSuperAdmin), controllers.DeleteSekolah)
			}

			gtk := protected.Group("/gtk")
			{
				gtk.GET("", controllers.GetGtkList)
				gtk.GET("/:id", controllers.GetGtk)
				gtk.POST("", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdminSekolah), controllers.CreateGtk)
				gtk.PATCH("/:id", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdminSekolah), controllers.UpdateGtk)
				gtk.DELETE("/:id", middleware.RequireRole(models.RoleSuperAdmin), controllers.DeleteGtk)
			}

			talenta := protected.Group("/talenta")
			{
				talenta.GET("", controllers.GetTalentaList)
				talenta.GET("/:id", controllers.GetTalenta)
				talenta.POST("", controllers.CreateTalenta)
				talenta.PATCH("/:id", controllers.UpdateTalenta)
				talenta.DELETE("/:id", controllers.DeleteTalenta)
				talenta.POST("/:id/verify", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdminSekolah), controllers.VerifyTalenta)
				talenta.DELETE("/:id/verify", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdminSekolah), controllers.UnverifyTalenta)
			}

			users := protected.Group("/users")
			users.Use(middleware.RequireRole(models.RoleSuperAdmin))
			{
				users.GET("", controllers.GetUsers)
				users.GET("/:id", controllers.GetUser)
				users.POST("", controllers.CreateUser)
				users.PATCH("/:id", controllers.UpdateUser)
				users.DELETE("/:id", controllers.DeleteUser)
			}

			export := protected.Group("/export")
			export.Use(middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdminSekolah))
			{
				export.GET("/gtk", controllers.ExportGtk)
				export.GET("/sekolah", controllers.ExportSekolah)
				export.GET("/talenta", controllers.ExportTalenta)
			}

			// Bulk import (super admin only)
			imports := protected.Group("/import")
			imports.Use(middleware.RequireRole(models.RoleSuperAdmin))
			{
				imports.POST("/gtk", controllers.AdminImportGtk)
				imports.POST("/sekolah", controllers.AdminImportSekolah)
				imports.GET("/runs", controllers.AdminListImportRuns)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint tidak ditemukan"})
	})
}
