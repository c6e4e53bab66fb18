package routes

import (
	"abstract-review-api/controllers"
	"abstract-review-api/middleware"
	"abstract-review-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Abstract Review API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// In-app notifications
			protected.GET("/notifications", controllers.GetMyNotifications)
			protected.PUT("/notifications/:id/read", controllers.MarkNotificationRead)

			// Abstracts under review
			abstracts := protected.Group("/abstracts")
			{
				abstracts.GET("/:id", controllers.GetAbstract)
				abstracts.GET("/:id/progress", controllers.GetReviewProgress)

				// Reviewers and admins submit review decisions
				abstracts.POST("/:id/reviews", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), controllers.SubmitReview)

				// Submitters resubmit after a revision request
				abstracts.POST("/:id/resubmit", controllers.ResubmitRevision)

				// Only admins assign reviewers and make final decisions
				abstracts.POST("/:id/reviewers", middleware.RequireRole(models.RoleAdmin), controllers.AssignReviewers)
				abstracts.POST("/:id/decision", middleware.RequireRole(models.RoleAdmin), controllers.AdminDecision)
			}

			// Event-scoped operations
			events := protected.Group("/events")
			{
				events.GET("/:event_id/categories", controllers.GetEventCategories)
				events.POST("/:event_id/auto-assign", middleware.RequireRole(models.RoleAdmin), controllers.AutoAssignReviewers)
			}
		}
	}
}
