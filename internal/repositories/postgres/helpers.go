package postgres

import (
	"gorm.io/gorm"

	"github.com/permalearn/assessment-service/internal/repositories"
)

// SharedHelpers holds query helpers reused across the postgres
// implementations.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

var attemptSortColumns = map[string]string{
	"started_at":   "started_at",
	"completed_at": "completed_at",
	"score":        "score",
}

// ApplyPaginationAndSort applies sorting and limit/offset. Unknown sort
// columns fall back to started_at so user input can never inject SQL.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	column, ok := attemptSortColumns[sortBy]
	if !ok {
		column = "started_at"
	}
	order := "desc"
	if sortOrder == "asc" {
		order = "asc"
	}
	query = query.Order(column + " " + order)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// ApplyAttemptFilters applies the optional attempt filters to a query.
func (h *SharedHelpers) ApplyAttemptFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.Passed != nil {
		query = query.Where("passed = ?", *filters.Passed)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}
	return query
}
