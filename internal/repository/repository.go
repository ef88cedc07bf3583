package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/to-do-list-api/internal/models"
)

var (
	// ErrTaskNotFound is returned when no task has the requested id.
	ErrTaskNotFound = errors.New("task repository: task not found")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user repository: user not found")
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task and assigns its ID
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves one page of tasks matching the filter, plus the
	// number of matching tasks across all pages
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves every column of an existing task
	Update(ctx context.Context, task *models.Task) error

	// Delete permanently removes a task
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing tasks.
// Nil fields do not constrain the result.
type TaskFilter struct {
	Status   *models.TaskStatus
	DueDate  *time.Time
	Page     int
	PageSize int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// Update saves an existing user
	Update(ctx context.Context, user *models.User) error
}
