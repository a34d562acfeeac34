package api

import (
	"alcyxob/snapfit/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	workoutService service.WorkoutService,
) {
	authHandler := NewAuthHandler(authService)
	workoutHandler := NewWorkoutHandler(workoutService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/forgot-password", authHandler.ForgotPassword)
			authGroup.POST("/reset-password", authHandler.ResetPassword)
		}

		// Generation and one-off export work without an account; saving,
		// history and sharing require one.
		apiV1.POST("/workouts/analyze", workoutHandler.Analyze)
		apiV1.POST("/workouts/export", workoutHandler.ExportPlan)

		// Share codes are the public read path.
		apiV1.GET("/shared/:code", workoutHandler.GetShared)
		apiV1.GET("/shared/:code/export", workoutHandler.ExportShared)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			username, _ := getUsernameFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "username": username})
		})

		accountGroup := protected.Group("/account")
		{
			accountGroup.PUT("/password", authHandler.ChangePassword)
			accountGroup.PUT("/email", authHandler.UpdateEmail)
		}

		protected.GET("/users/search", authHandler.SearchUsers)

		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.Save)
			workoutGroup.GET("", workoutHandler.List)
			workoutGroup.GET("/stats", workoutHandler.Stats)
			workoutGroup.GET("/shared-with-me", workoutHandler.SharedWithMe)
			workoutGroup.DELETE("/:id", workoutHandler.Delete)
			workoutGroup.POST("/:id/share", workoutHandler.Share)
			workoutGroup.GET("/:id/export", workoutHandler.ExportEntry)
			workoutGroup.GET("/:id/photos", workoutHandler.Photos)
		}
	}
}
