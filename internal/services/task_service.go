package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/to-do-list-api/internal/constants"
	"github.com/yukikurage/to-do-list-api/internal/models"
	"github.com/yukikurage/to-do-list-api/internal/permissions"
	"github.com/yukikurage/to-do-list-api/internal/repository"
	"github.com/yukikurage/to-do-list-api/internal/utils"
	"github.com/yukikurage/to-do-list-api/internal/validation"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidPage  = utils.ErrInvalidPage
)

// TaskService handles task business logic. Every operation runs
// authorization, then validation, then the store call, and stops at the
// first stage that fails.
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// ListTasksInput represents raw filters and paging for listing tasks.
// Empty filter strings mean no filter.
type ListTasksInput struct {
	Status   string
	DueDate  string
	Page     int
	PageSize int
}

// TaskPage is one page of a task listing
type TaskPage struct {
	Tasks      []models.Task
	Page       int
	PageSize   int
	TotalCount int64
	TotalPages int
}

// ListTasks returns the tasks matching the filters, ordered by status
func (s *TaskService) ListTasks(ctx context.Context, identity *permissions.Identity, input ListTasksInput) (*TaskPage, error) {
	if err := permissions.Authorize(permissions.Read, identity); err != nil {
		return nil, err
	}

	params := utils.NewPaginationParams(input.Page, input.PageSize, constants.DefaultPageSize)
	filter := repository.TaskFilter{
		Page:     params.Page,
		PageSize: params.Limit,
	}

	var errs validation.Errors
	if input.Status != "" {
		status, err := validation.ParseStatus(input.Status)
		if err != nil {
			errs = append(errs, asFieldErrors(err)...)
		} else {
			filter.Status = &status
		}
	}
	if input.DueDate != "" {
		dueDate, err := validation.ParseDueDate(input.DueDate)
		if err != nil {
			errs = append(errs, asFieldErrors(err)...)
		} else {
			filter.DueDate = &dueDate
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	totalPages := utils.TotalPages(total, params.Limit)
	if params.Page > 1 && params.Page > totalPages {
		return nil, ErrInvalidPage
	}

	return &TaskPage{
		Tasks:      tasks,
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

// GetTask returns a single task
func (s *TaskService) GetTask(ctx context.Context, identity *permissions.Identity, taskID uint64) (*models.Task, error) {
	if err := permissions.Authorize(permissions.Read, identity); err != nil {
		return nil, err
	}

	return s.findTask(ctx, taskID)
}

// CreateTask validates payload and stores a new task. Status defaults to Pending.
func (s *TaskService) CreateTask(ctx context.Context, identity *permissions.Identity, payload validation.Payload) (*models.Task, error) {
	if err := permissions.Authorize(permissions.Write, identity); err != nil {
		return nil, err
	}

	fields, err := validation.ValidateTask(payload, validation.Create)
	if err != nil {
		return nil, err
	}

	task := &models.Task{}
	fields.Apply(task)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ReplaceTask overwrites every field of an existing task
func (s *TaskService) ReplaceTask(ctx context.Context, identity *permissions.Identity, taskID uint64, payload validation.Payload) (*models.Task, error) {
	return s.updateTask(ctx, identity, taskID, payload, validation.Replace)
}

// PatchTask changes only the fields present in payload
func (s *TaskService) PatchTask(ctx context.Context, identity *permissions.Identity, taskID uint64, payload validation.Payload) (*models.Task, error) {
	return s.updateTask(ctx, identity, taskID, payload, validation.Partial)
}

// DeleteTask permanently removes a task
func (s *TaskService) DeleteTask(ctx context.Context, identity *permissions.Identity, taskID uint64) error {
	if err := permissions.Authorize(permissions.Delete, identity); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) updateTask(ctx context.Context, identity *permissions.Identity, taskID uint64, payload validation.Payload, mode validation.Mode) (*models.Task, error) {
	if err := permissions.Authorize(permissions.Write, identity); err != nil {
		return nil, err
	}

	fields, err := validation.ValidateTask(payload, mode)
	if err != nil {
		return nil, err
	}

	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	fields.Apply(task)

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

func (s *TaskService) findTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func asFieldErrors(err error) validation.Errors {
	var errs validation.Errors
	if errors.As(err, &errs) {
		return errs
	}
	return validation.Errors{{Message: err.Error()}}
}
