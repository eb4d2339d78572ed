package repositories

import (
	"context"

	"github.com/permalearn/assessment-service/internal/models"
)

// ModuleTestRepository interface for module test operations.
type ModuleTestRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, test *models.ModuleTest) error
	GetByID(ctx context.Context, id uint) (*models.ModuleTest, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.ModuleTest, error)
	GetByModuleID(ctx context.Context, moduleID uint) (*models.ModuleTest, error)
	Update(ctx context.Context, test *models.ModuleTest) error
	Delete(ctx context.Context, id uint) error // Soft delete

	// Status management
	UpdateStatus(ctx context.Context, id uint, status models.TestStatus) error

	// Question operations
	GetQuestions(ctx context.Context, testID uint) ([]*models.Question, error) // ordered by "order"
	AddQuestions(ctx context.Context, testID uint, questions []*models.Question) error

	// Validation helpers
	ExistsByID(ctx context.Context, id uint) (bool, error)
	IsPublished(ctx context.Context, id uint) (bool, error)
	HasAttempts(ctx context.Context, id uint) (bool, error)
}
