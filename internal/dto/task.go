package dto

import (
	"time"

	"github.com/yukikurage/to-do-list-api/internal/models"
)

// TaskDTO represents a task in API responses. It carries exactly the
// public fields of a task.
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	DueDate     *time.Time        `json:"due_date"`
	Status      models.TaskStatus `json:"status"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Count    int64     `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []TaskDTO `json:"results"`
}

// TokenRequest is the body of a token obtain request
type TokenRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// TokenRefreshRequest is the body of a token refresh request
type TokenRefreshRequest struct {
	Refresh string `json:"refresh" form:"refresh" binding:"required"`
}

// AccessTokenResponse is returned by a token refresh
type AccessTokenResponse struct {
	Access string `json:"access"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Status:      task.Status,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskListResponse converts a page of tasks, with links to the
// neighbouring pages if they exist
func ToTaskListResponse(tasks []models.Task, totalCount int64, next, previous *string) TaskListResponse {
	return TaskListResponse{
		Count:    totalCount,
		Next:     next,
		Previous: previous,
		Results:  ToTaskDTOs(tasks),
	}
}
