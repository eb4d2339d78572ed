package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/permalearn/assessment-service/internal/services"
	"github.com/permalearn/assessment-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	exportService  services.ExportService
	validator      *utils.Validator
}

// SubmitAnswersRequest is the submission body. The test comes from the
// path, the student from the identity middleware.
type SubmitAnswersRequest struct {
	Answers          map[uint]string `json:"answers" validate:"required,min=1"`
	TimeSpentSeconds *int            `json:"time_spent_seconds" validate:"omitempty,min=0"`
	StartedAt        *time.Time      `json:"started_at"`
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		exportService:  exportService,
		validator:      validator,
	}
}

// SubmitTest grades and records one submission for a module test
// @Summary Submit test answers
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path uint true "Test ID"
// @Param submission body SubmitAnswersRequest true "Submitted answers"
// @Success 200 {object} SuccessResponse{data=services.SubmitTestResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /assessments/{id}/submit [post]
func (h *AttemptHandler) SubmitTest(c *gin.Context) {
	testID := parseIDParam(c, "id")
	if testID == 0 {
		return
	}
	studentID := currentUserID(c)
	if studentID == 0 {
		return
	}

	h.LogRequest(c, "Submitting test answers", "test_id", testID)

	var req SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.attemptService.Submit(c.Request.Context(), &services.SubmitTestRequest{
		TestID:           testID,
		StudentID:        studentID,
		Answers:          req.Answers,
		TimeSpentSeconds: req.TimeSpentSeconds,
		StartedAt:        req.StartedAt,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Submission graded", resp)
}

// GetAttempt returns one attempt with its per-question results
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID := parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	attempt, err := h.attemptService.GetByID(c.Request.Context(), attemptID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempt retrieved", attempt)
}

// ListMyAttempts returns the caller's attempts across all tests
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	attempts, total, err := h.attemptService.GetByStudent(c.Request.Context(), userID, parseAttemptFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempts retrieved", gin.H{
		"attempts": attempts,
		"total":    total,
	})
}

// ListStudentAttempts returns a student's attempt history. Students may
// only read their own; instructors and admins may read anyone's.
func (h *AttemptHandler) ListStudentAttempts(c *gin.Context) {
	studentID := parseIDParam(c, "student_id")
	if studentID == 0 {
		return
	}
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	attempts, total, err := h.attemptService.GetForStudent(c.Request.Context(), studentID, userID, parseAttemptFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempts retrieved", gin.H{
		"attempts": attempts,
		"total":    total,
	})
}

// ListTestAttempts returns all attempts for a test (staff only)
func (h *AttemptHandler) ListTestAttempts(c *gin.Context) {
	testID := parseIDParam(c, "id")
	if testID == 0 {
		return
	}
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	attempts, total, err := h.attemptService.GetByTest(c.Request.Context(), testID, parseAttemptFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempts retrieved", gin.H{
		"attempts": attempts,
		"total":    total,
	})
}

// GetRemainingAttempts reports the caller's remaining submissions
func (h *AttemptHandler) GetRemainingAttempts(c *gin.Context) {
	testID := parseIDParam(c, "id")
	if testID == 0 {
		return
	}
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	remaining, err := h.attemptService.RemainingAttempts(c.Request.Context(), testID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Remaining attempts retrieved", gin.H{
		"test_id":   testID,
		"remaining": remaining,
	})
}

// GetTestStats returns aggregate attempt statistics (staff only)
func (h *AttemptHandler) GetTestStats(c *gin.Context) {
	testID := parseIDParam(c, "id")
	if testID == 0 {
		return
	}
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	stats, err := h.attemptService.GetStats(c.Request.Context(), testID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Statistics retrieved", stats)
}

// ExportTestResults streams the test's results as CSV or XLSX
func (h *AttemptHandler) ExportTestResults(c *gin.Context) {
	testID := parseIDParam(c, "id")
	if testID == 0 {
		return
	}
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	format := c.DefaultQuery("format", "csv")
	h.LogRequest(c, "Exporting test results", "test_id", testID, "format", format)

	var (
		data        []byte
		err         error
		contentType string
		extension   string
	)

	switch format {
	case "csv":
		data, err = h.exportService.ExportTestResultsToCSV(c.Request.Context(), testID, userID)
		contentType = "text/csv"
		extension = "csv"
	case "xlsx":
		data, err = h.exportService.ExportTestResultsToExcel(c.Request.Context(), testID, userID)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		extension = "xlsx"
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: "use csv or xlsx",
		})
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("test_%d_results.%s", testID, extension)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
