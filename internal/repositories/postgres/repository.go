package postgres

import (
	"context"

	"github.com/permalearn/assessment-service/internal/repositories"
	"gorm.io/gorm"
)

// gormRepository is the postgres-backed aggregate repository. A
// transaction-scoped copy shares the same per-entity implementations but
// binds them to the tx handle.
type gormRepository struct {
	db         *gorm.DB
	course     repositories.CourseRepository
	moduleTest repositories.ModuleTestRepository
	attempt    repositories.AttemptRepository
	progress   repositories.ProgressRepository
	user       repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return newGormRepository(db)
}

func newGormRepository(db *gorm.DB) *gormRepository {
	return &gormRepository{
		db:         db,
		course:     NewCoursePostgreSQL(db),
		moduleTest: NewModuleTestPostgreSQL(db),
		attempt:    NewAttemptPostgreSQL(db),
		progress:   NewProgressPostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *gormRepository) Course() repositories.CourseRepository         { return r.course }
func (r *gormRepository) ModuleTest() repositories.ModuleTestRepository { return r.moduleTest }
func (r *gormRepository) Attempt() repositories.AttemptRepository       { return r.attempt }
func (r *gormRepository) Progress() repositories.ProgressRepository     { return r.progress }
func (r *gormRepository) User() repositories.UserRepository             { return r.user }

func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormRepository(tx))
	})
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *gormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
