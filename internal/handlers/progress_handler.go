package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/permalearn/assessment-service/internal/services"
	"github.com/permalearn/assessment-service/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
	validator       *utils.Validator
}

// CompleteModuleBody marks a module completed for the caller.
type CompleteModuleBody struct {
	CourseID uint `json:"course_id" validate:"required"`
	ModuleID uint `json:"module_id" validate:"required"`
	Score    int  `json:"score" validate:"min=0,max=100"`
}

// TouchModuleBody records a content view for the caller.
type TouchModuleBody struct {
	CourseID         uint `json:"course_id" validate:"required"`
	ModuleID         uint `json:"module_id" validate:"required"`
	Position         int  `json:"position" validate:"min=0"`
	TimeSpentSeconds int  `json:"time_spent_seconds" validate:"min=0"`
}

func NewProgressHandler(
	progressService services.ProgressService,
	validator *utils.Validator,
	logger utils.Logger,
) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
		validator:       validator,
	}
}

// CompleteModule marks a module completed for the caller
// @Summary Complete module
// @Tags progress
// @Accept json
// @Produce json
// @Param completion body CompleteModuleBody true "Completion data"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /progress/complete [post]
func (h *ProgressHandler) CompleteModule(c *gin.Context) {
	studentID := currentUserID(c)
	if studentID == 0 {
		return
	}

	var body CompleteModuleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Completing module", "module_id", body.ModuleID, "course_id", body.CourseID)

	err := h.progressService.CompleteModule(c.Request.Context(), &services.CompleteModuleRequest{
		StudentID: studentID,
		CourseID:  body.CourseID,
		ModuleID:  body.ModuleID,
		Score:     body.Score,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Module completed", gin.H{
		"module_id": body.ModuleID,
	})
}

// TouchModule records a content view for the caller
func (h *ProgressHandler) TouchModule(c *gin.Context) {
	studentID := currentUserID(c)
	if studentID == 0 {
		return
	}

	var body TouchModuleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	err := h.progressService.TouchModule(c.Request.Context(), &services.TouchModuleRequest{
		StudentID:        studentID,
		CourseID:         body.CourseID,
		ModuleID:         body.ModuleID,
		Position:         body.Position,
		TimeSpentSeconds: body.TimeSpentSeconds,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Progress recorded", nil)
}

// GetCourseProgress returns the caller's gate state for a whole course
func (h *ProgressHandler) GetCourseProgress(c *gin.Context) {
	courseID := parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	studentID := currentUserID(c)
	if studentID == 0 {
		return
	}

	progress, err := h.progressService.GetCourseProgress(c.Request.Context(), studentID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Course progress retrieved", progress)
}

// CheckModuleAccess reports whether the caller can open a module
func (h *ProgressHandler) CheckModuleAccess(c *gin.Context) {
	moduleID := parseIDParam(c, "id")
	if moduleID == 0 {
		return
	}
	studentID := currentUserID(c)
	if studentID == 0 {
		return
	}

	accessible, err := h.progressService.CanAccessModule(c.Request.Context(), studentID, moduleID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Module access checked", gin.H{
		"module_id":  moduleID,
		"accessible": accessible,
	})
}
