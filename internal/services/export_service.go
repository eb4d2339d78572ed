package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/permalearn/assessment-service/internal/models"
	"github.com/permalearn/assessment-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var resultExportHeaders = []string{
	"Attempt ID", "Student ID", "Student Name", "Score", "Passed",
	"Time Spent (s)", "Started At", "Completed At",
}

// ===== EXPORT OPERATIONS =====

func (s *exportService) ExportTestResultsToExcel(ctx context.Context, testID uint, userID uint) ([]byte, error) {
	attempts, err := s.getResultsForExport(ctx, testID, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range resultExportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	names := s.studentNames(ctx, attempts)
	for rowIndex, attempt := range attempts {
		row := attemptToExportRow(attempt, names[attempt.StudentID])
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported test results to Excel",
		"test_id", testID, "rows", len(attempts))

	return buf.Bytes(), nil
}

func (s *exportService) ExportTestResultsToCSV(ctx context.Context, testID uint, userID uint) ([]byte, error) {
	attempts, err := s.getResultsForExport(ctx, testID, userID)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(resultExportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	names := s.studentNames(ctx, attempts)
	for _, attempt := range attempts {
		if err := writer.Write(attemptToExportRow(attempt, names[attempt.StudentID])); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	s.logger.Info("Exported test results to CSV",
		"test_id", testID, "rows", len(attempts))

	return []byte(buf.String()), nil
}

// ===== HELPERS =====

func (s *exportService) getResultsForExport(ctx context.Context, testID uint, userID uint) ([]*models.TestAttempt, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, NewStorageError("load user", err)
	}
	if user.Role != models.RoleInstructor && user.Role != models.RoleAdmin {
		return nil, NewPermissionError(userID, testID, "test", "export_results", "insufficient permissions")
	}

	exists, err := s.repo.ModuleTest().ExistsByID(ctx, testID)
	if err != nil {
		return nil, NewStorageError("check module test", err)
	}
	if !exists {
		return nil, ErrTestNotFound
	}

	attempts, _, err := s.repo.Attempt().List(ctx, repositories.AttemptFilters{
		TestID: &testID,
		SortBy: "started_at",
	})
	if err != nil {
		return nil, NewStorageError("list attempts for export", err)
	}

	return attempts, nil
}

// studentNames resolves attempt student IDs to full names in one query.
func (s *exportService) studentNames(ctx context.Context, attempts []*models.TestAttempt) map[uint]string {
	ids := make([]uint, 0, len(attempts))
	seen := make(map[uint]bool, len(attempts))
	for _, attempt := range attempts {
		if !seen[attempt.StudentID] {
			seen[attempt.StudentID] = true
			ids = append(ids, attempt.StudentID)
		}
	}

	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names
	}

	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve student names for export", "error", err)
		return names
	}
	for _, user := range users {
		names[user.ID] = user.FullName
	}
	return names
}

func attemptToExportRow(attempt *models.TestAttempt, studentName string) []string {
	timeSpent := ""
	if attempt.TimeSpentSeconds != nil {
		timeSpent = strconv.Itoa(*attempt.TimeSpentSeconds)
	}
	completedAt := ""
	if attempt.CompletedAt != nil {
		completedAt = attempt.CompletedAt.Format("2006-01-02 15:04:05")
	}

	return []string{
		strconv.FormatUint(uint64(attempt.ID), 10),
		strconv.FormatUint(uint64(attempt.StudentID), 10),
		studentName,
		strconv.Itoa(attempt.Score),
		strconv.FormatBool(attempt.Passed),
		timeSpent,
		attempt.StartedAt.Format("2006-01-02 15:04:05"),
		completedAt,
	}
}
