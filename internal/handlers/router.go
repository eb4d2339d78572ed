package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/permalearn/assessment-service/internal/services"
	"github.com/permalearn/assessment-service/internal/utils"
)

type HandlerManager struct {
	attemptHandler  *AttemptHandler
	progressHandler *ProgressHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler:  NewAttemptHandler(serviceManager.Attempt(), serviceManager.Export(), validator, logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), validator, logger),
	}
}

// IdentityMiddleware reads the user identity forwarded by the API
// gateway. Authentication itself happens upstream; this service only
// trusts the X-User-ID header set after token verification.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-User-ID"); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
				c.Set("user_id", uint(id))
			}
		}
		c.Next()
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(IdentityMiddleware())
	{
		// Assessment submission and results
		assessments := v1.Group("/assessments")
		{
			assessments.POST("/:id/submit", hm.attemptHandler.SubmitTest)
			assessments.GET("/:id/attempts", hm.attemptHandler.ListTestAttempts)
			assessments.GET("/:id/attempts/remaining", hm.attemptHandler.GetRemainingAttempts)
			assessments.GET("/:id/stats", hm.attemptHandler.GetTestStats)
			assessments.GET("/:id/export", hm.attemptHandler.ExportTestResults)
		}

		// Attempt history
		attempts := v1.Group("/attempts")
		{
			attempts.GET("", hm.attemptHandler.ListMyAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.GET("/student/:student_id", hm.attemptHandler.ListStudentAttempts)
		}

		// Module progression gate
		progress := v1.Group("/progress")
		{
			progress.POST("/complete", hm.progressHandler.CompleteModule)
			progress.POST("/touch", hm.progressHandler.TouchModule)
			progress.GET("/courses/:id", hm.progressHandler.GetCourseProgress)
			progress.GET("/modules/:id/access", hm.progressHandler.CheckModuleAccess)
		}
	}
}

// HealthCheck reports service liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "assessment-service",
	})
}
