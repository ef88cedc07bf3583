package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yukikurage/to-do-list-api/internal/dto"
	apierrors "github.com/yukikurage/to-do-list-api/internal/errors"
	"github.com/yukikurage/to-do-list-api/internal/middleware"
	"github.com/yukikurage/to-do-list-api/internal/models"
	"github.com/yukikurage/to-do-list-api/internal/permissions"
	"github.com/yukikurage/to-do-list-api/internal/services"
	"github.com/yukikurage/to-do-list-api/internal/utils"
	"github.com/yukikurage/to-do-list-api/internal/validation"
)

const maxFormMemory = 1 << 20

type TaskHandler struct {
	taskService *services.TaskService
	pageSize    int
}

func NewTaskHandler(taskService *services.TaskService, pageSize int) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		pageSize:    pageSize,
	}
}

// ListTasks returns one page of tasks ordered by status.
// Supports ?status= and ?due_date= exact-match filters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params, err := utils.GetPaginationParams(c, h.pageSize)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	page, err := h.taskService.ListTasks(c.Request.Context(), middleware.GetIdentity(c), services.ListTasksInput{
		Status:   c.Query("status"),
		DueDate:  c.Query("due_date"),
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	base := utils.RequestURL(c)
	var next, previous *string
	if page.Page < page.TotalPages {
		link := utils.PageURL(base, page.Page+1)
		next = &link
	}
	if page.Page > 1 {
		link := utils.PageURL(base, page.Page-1)
		previous = &link
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page.Tasks, page.TotalCount, next, previous))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), middleware.GetIdentity(c), taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	// Permission is checked before the body is read so anonymous callers
	// get 401 rather than a validation error.
	identity := middleware.GetIdentity(c)
	if err := permissions.Authorize(permissions.Write, identity); err != nil {
		respondTaskError(c, err)
		return
	}

	payload, ok := bindTaskPayload(c)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), identity, payload)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ReplaceTask overwrites all fields of a task
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	h.updateTask(c, h.taskService.ReplaceTask)
}

// PatchTask updates only the fields present in the request body
func (h *TaskHandler) PatchTask(c *gin.Context) {
	h.updateTask(c, h.taskService.PatchTask)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if err := permissions.Authorize(permissions.Delete, identity); err != nil {
		respondTaskError(c, err)
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), identity, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}

type updateFunc func(ctx context.Context, identity *permissions.Identity, taskID uint64, payload validation.Payload) (*models.Task, error)

func (h *TaskHandler) updateTask(c *gin.Context, update updateFunc) {
	identity := middleware.GetIdentity(c)
	if err := permissions.Authorize(permissions.Write, identity); err != nil {
		respondTaskError(c, err)
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	payload, ok := bindTaskPayload(c)
	if !ok {
		return
	}

	task, err := update(c.Request.Context(), identity, taskID, payload)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// taskIDParam parses the :id path parameter. IDs that cannot exist are reported as not found.
func taskIDParam(c *gin.Context) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.NotFound(c, "Task not found")
		return 0, false
	}
	return taskID, true
}

// bindTaskPayload reads a JSON or form-encoded body into a field map
func bindTaskPayload(c *gin.Context) (validation.Payload, bool) {
	switch c.ContentType() {
	case binding.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return nil, false
		}
		return validation.PayloadFromForm(c.Request.PostForm), true
	case binding.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return nil, false
		}
		return validation.PayloadFromForm(c.Request.PostForm), true
	}

	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return validation.Payload{}, true
	}

	var payload validation.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return nil, false
	}
	if payload == nil {
		payload = validation.Payload{}
	}
	return payload, true
}

func respondTaskError(c *gin.Context, err error) {
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		apierrors.BadRequestWithDetails(c, "Invalid task data", fieldErrs.Fields())
	case errors.Is(err, permissions.ErrUnauthenticated):
		logDenied(c, err)
		apierrors.Unauthorized(c, "Authentication credentials were not provided")
	case errors.Is(err, permissions.ErrForbidden):
		logDenied(c, err)
		apierrors.Forbidden(c, "You do not have permission to perform this action")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrInvalidPage):
		apierrors.NotFound(c, "Invalid page.")
	default:
		log.Printf("[%s] %s %s: %v", middleware.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
		apierrors.InternalError(c, "")
	}
}

// logDenied records which operation a caller was refused, in debug mode only
func logDenied(c *gin.Context, err error) {
	if gin.IsDebugging() {
		log.Printf("[%s] %s %s denied: %v", middleware.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
	}
}
