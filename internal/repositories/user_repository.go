package repositories

import (
	"context"

	"github.com/permalearn/assessment-service/internal/models"
)

// UserRepository interface for user operations (minimal - this service
// is not the owner of user data).
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error)

	ExistsByID(ctx context.Context, id uint) (bool, error)
	IsActive(ctx context.Context, id uint) (bool, error)
	HasRole(ctx context.Context, id uint, role models.UserRole) (bool, error)
}
