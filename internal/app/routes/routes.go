package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/controllers"
	"github.com/yigit/studentrecords/internal/middleware"
)

// Options tunes the route middleware
type Options struct {
	// ImageDir is served read-only under /<ImagePrefix>
	ImageDir    string
	ImagePrefix string

	UpdateLimit  int64
	UpdatePeriod time.Duration
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	studentController *controllers.StudentController,
	healthController *controllers.HealthController,
	opts Options,
) {
	router.GET("/health", healthController.Health)

	// Uploaded profile images
	router.Static("/"+opts.ImagePrefix, opts.ImageDir)

	api := router.Group("/api")
	api.Use(middleware.SecurityHeaders())

	students := api.Group("/students")
	{
		students.POST("", studentController.CreateStudent)
		students.GET("", studentController.ListStudents)
		students.GET("/:id", studentController.GetStudent)
		students.PUT("/:id", middleware.RateLimit(opts.UpdateLimit, opts.UpdatePeriod), studentController.UpdateStudent)
		students.DELETE("/:id", studentController.DeleteStudent)
	}
}
