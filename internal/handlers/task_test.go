package handlers

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/to-do-list-api/internal/models"
)

// TaskHandlerTestSuite drives the task routes through the full router
type TaskHandlerTestSuite struct {
	suite.Suite
	env        apiTestEnv
	userToken  string
	staffToken string
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.env = setupAPITestEnv(suite.T())

	user := suite.env.createUser(suite.T(), "user", "password123", false)
	staff := suite.env.createUser(suite.T(), "admin", "password123", true)
	suite.userToken = suite.env.accessToken(suite.T(), user)
	suite.staffToken = suite.env.accessToken(suite.T(), staff)
}

func (suite *TaskHandlerTestSuite) getTask(id uint64) *models.Task {
	var task models.Task
	suite.Require().NoError(suite.env.db.First(&task, id).Error)
	return &task
}

// Test anonymous reads
func (suite *TaskHandlerTestSuite) TestAnonymousCanListAndRetrieve() {
	task := suite.env.createTask(suite.T(), "Test Task", "Test Description", models.TaskStatusPending)

	w := suite.env.do(http.MethodGet, "/api/tasks", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	body := decodeBody(suite.T(), w)
	suite.Equal(float64(1), body["count"])

	w = suite.env.do(http.MethodGet, taskPath(task.ID), nil, "")
	suite.Equal(http.StatusOK, w.Code)
	body = decodeBody(suite.T(), w)
	suite.Equal("Test Task", body["title"])
	suite.Equal("Pending", models.TaskStatus(body["status"].(string)).Label())
}

func (suite *TaskHandlerTestSuite) TestAnonymousCannotModify() {
	task := suite.env.createTask(suite.T(), "Test Task", "Test Description", models.TaskStatusPending)
	payload := map[string]any{"title": "Changed"}

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/tasks", payload},
		{http.MethodPut, taskPath(task.ID), payload},
		{http.MethodPatch, taskPath(task.ID), payload},
		{http.MethodDelete, taskPath(task.ID), nil},
	}

	for _, tc := range cases {
		w := suite.env.do(tc.method, tc.path, tc.body, "")
		suite.Equal(http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
		suite.Equal("UNAUTHORIZED", decodeBody(suite.T(), w)["code"])
	}

	suite.Equal(int64(1), suite.env.countTasks(suite.T()))
	suite.Equal("Test Task", suite.getTask(task.ID).Title)
}

func (suite *TaskHandlerTestSuite) TestInvalidTokenIsTreatedAsAnonymous() {
	w := suite.env.do(http.MethodGet, "/api/tasks", nil, "not-a-jwt")
	suite.Equal(http.StatusOK, w.Code)

	w = suite.env.do(http.MethodPost, "/api/tasks", map[string]any{"title": "New"}, "not-a-jwt")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(int64(0), suite.env.countTasks(suite.T()))
}

// Test CreateTask
func (suite *TaskHandlerTestSuite) TestCreateTask() {
	w := suite.env.do(http.MethodPost, "/api/tasks", map[string]any{
		"title":       "New Task",
		"description": "New Description",
		"due_date":    "2025-12-31T10:00:00Z",
		"status":      "IP",
	}, suite.userToken)

	suite.Equal(http.StatusCreated, w.Code)
	body := decodeBody(suite.T(), w)
	suite.Equal("New Task", body["title"])
	suite.Equal("New Description", body["description"])
	suite.Equal("2025-12-31T10:00:00Z", body["due_date"])
	suite.Equal("IP", body["status"])
	suite.NotZero(body["id"])

	suite.Equal(int64(1), suite.env.countTasks(suite.T()))
}

func (suite *TaskHandlerTestSuite) TestCreateTaskDefaults() {
	w := suite.env.do(http.MethodPost, "/api/tasks", map[string]any{"title": "Only title"}, suite.userToken)

	suite.Equal(http.StatusCreated, w.Code)
	body := decodeBody(suite.T(), w)

	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	suite.Equal([]string{"description", "due_date", "id", "status", "title"}, keys)

	suite.Equal("", body["description"])
	suite.Nil(body["due_date"])
	suite.Equal("P", body["status"])
}

func (suite *TaskHandlerTestSuite) TestCreateTaskWithFormData() {
	form := url.Values{}
	form.Set("title", "Form Task")
	form.Set("status", "C")
	form.Set("due_date", "")

	w := suite.env.do(http.MethodPost, "/api/tasks", form, suite.userToken)

	suite.Equal(http.StatusCreated, w.Code)
	body := decodeBody(suite.T(), w)
	suite.Equal("Form Task", body["title"])
	suite.Equal("C", body["status"])
	suite.Nil(body["due_date"])
}

func (suite *TaskHandlerTestSuite) TestCreateTaskValidation() {
	w := suite.env.do(http.MethodPost, "/api/tasks", map[string]any{
		"description": "No title",
		"status":      "DONE",
	}, suite.userToken)

	suite.Equal(http.StatusBadRequest, w.Code)
	body := decodeBody(suite.T(), w)
	suite.Equal("INVALID_INPUT", body["code"])
	details := body["details"].(map[string]any)
	suite.Contains(details, "title")
	suite.Contains(details, "status")
	suite.Equal(int64(0), suite.env.countTasks(suite.T()))
}

func (suite *TaskHandlerTestSuite) TestCreateTaskInvalidJSON() {
	w := suite.env.do(http.MethodPost, "/api/tasks", `{"title":`, suite.userToken)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(int64(0), suite.env.countTasks(suite.T()))
}

// Test GetTask
func (suite *TaskHandlerTestSuite) TestGetTaskNotFound() {
	w := suite.env.do(http.MethodGet, "/api/tasks/999", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("NOT_FOUND", decodeBody(suite.T(), w)["code"])

	w = suite.env.do(http.MethodGet, "/api/tasks/abc", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

// Test ListTasks
func (suite *TaskHandlerTestSuite) TestListTasksOrderedByStatus() {
	suite.env.createTask(suite.T(), "pending", "", models.TaskStatusPending)
	suite.env.createTask(suite.T(), "completed", "", models.TaskStatusCompleted)
	suite.env.createTask(suite.T(), "in progress", "", models.TaskStatusInProgress)

	w := suite.env.do(http.MethodGet, "/api/tasks", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	body := decodeBody(suite.T(), w)
	suite.Equal(float64(3), body["count"])
	suite.Nil(body["next"])
	suite.Nil(body["previous"])

	results := body["results"].([]any)
	suite.Len(results, 3)
	statuses := make([]string, len(results))
	for i, r := range results {
		statuses[i] = r.(map[string]any)["status"].(string)
	}
	suite.Equal([]string{"C", "IP", "P"}, statuses)
}

func (suite *TaskHandlerTestSuite) TestListTasksFilterByStatus() {
	suite.env.createTask(suite.T(), "a", "", models.TaskStatusPending)
	suite.env.createTask(suite.T(), "b", "", models.TaskStatusInProgress)
	suite.env.createTask(suite.T(), "c", "", models.TaskStatusInProgress)

	w := suite.env.do(http.MethodGet, "/api/tasks?status=IP", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	body := decodeBody(suite.T(), w)
	suite.Equal(float64(2), body["count"])
	for _, r := range body["results"].([]any) {
		suite.Equal("IP", r.(map[string]any)["status"])
	}
}

func (suite *TaskHandlerTestSuite) TestListTasksFilterByDueDate() {
	due := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	task := suite.env.createTask(suite.T(), "with due date", "", models.TaskStatusPending)
	suite.Require().NoError(suite.env.db.Model(task).Update("due_date", due).Error)
	suite.env.createTask(suite.T(), "without due date", "", models.TaskStatusPending)

	w := suite.env.do(http.MethodGet, "/api/tasks?due_date=2025-06-01T09:00:00Z", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	body := decodeBody(suite.T(), w)
	suite.Equal(float64(1), body["count"])
	result := body["results"].([]any)[0].(map[string]any)
	suite.Equal("with due date", result["title"])
}

func (suite *TaskHandlerTestSuite) TestListTasksInvalidFilter() {
	w := suite.env.do(http.MethodGet, "/api/tasks?status=DONE", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	details := decodeBody(suite.T(), w)["details"].(map[string]any)
	suite.Contains(details, "status")

	w = suite.env.do(http.MethodGet, "/api/tasks?due_date=tomorrow", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	details = decodeBody(suite.T(), w)["details"].(map[string]any)
	suite.Contains(details, "due_date")
}

func (suite *TaskHandlerTestSuite) TestListTasksPagination() {
	for _, title := range []string{"one", "two", "three"} {
		suite.env.createTask(suite.T(), title, "", models.TaskStatusPending)
	}

	w := suite.env.do(http.MethodGet, "/api/tasks?page_size=2", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	body := decodeBody(suite.T(), w)
	suite.Equal(float64(3), body["count"])
	suite.Len(body["results"].([]any), 2)
	suite.Nil(body["previous"])
	suite.Require().NotNil(body["next"])
	suite.True(strings.Contains(body["next"].(string), "page=2"))

	w = suite.env.do(http.MethodGet, "/api/tasks?page_size=2&page=2", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	body = decodeBody(suite.T(), w)
	suite.Len(body["results"].([]any), 1)
	suite.Nil(body["next"])
	suite.Require().NotNil(body["previous"])
	suite.False(strings.Contains(body["previous"].(string), "page="))

	w = suite.env.do(http.MethodGet, "/api/tasks?page_size=2&page=3", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Invalid page.", decodeBody(suite.T(), w)["message"])
}

func (suite *TaskHandlerTestSuite) TestListTasksInvalidPageNumber() {
	suite.env.createTask(suite.T(), "only", "", models.TaskStatusPending)

	for _, page := range []string{"abc", "0", "-1"} {
		w := suite.env.do(http.MethodGet, "/api/tasks?page="+page, nil, "")
		suite.Equal(http.StatusNotFound, w.Code, "page=%s", page)
		suite.Equal("Invalid page.", decodeBody(suite.T(), w)["message"])
	}
}

func (suite *TaskHandlerTestSuite) TestListTasksConfiguredPageSize() {
	env := setupAPITestEnvWithPageSize(suite.T(), 15)
	for i := 0; i < 120; i++ {
		env.createTask(suite.T(), "task", "", models.TaskStatusPending)
	}

	cases := []struct {
		query string
		want  int
	}{
		{"", 15},
		{"?page_size=0", 15},
		{"?page_size=lots", 15},
		{"?page_size=7", 7},
		{"?page_size=1000", 100},
	}

	for _, tc := range cases {
		w := env.do(http.MethodGet, "/api/tasks"+tc.query, nil, "")
		suite.Require().Equal(http.StatusOK, w.Code, tc.query)
		body := decodeBody(suite.T(), w)
		suite.Equal(float64(120), body["count"])
		suite.Len(body["results"].([]any), tc.want, tc.query)
	}
}

func (suite *TaskHandlerTestSuite) TestListTasksEmpty() {
	w := suite.env.do(http.MethodGet, "/api/tasks", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	body := decodeBody(suite.T(), w)
	suite.Equal(float64(0), body["count"])
	suite.Empty(body["results"])
}

// Test ReplaceTask
func (suite *TaskHandlerTestSuite) TestReplaceTask() {
	task := suite.env.createTask(suite.T(), "Original", "Original Description", models.TaskStatusInProgress)

	w := suite.env.do(http.MethodPut, taskPath(task.ID), map[string]any{"title": "Replaced"}, suite.userToken)
	suite.Equal(http.StatusOK, w.Code)

	body := decodeBody(suite.T(), w)
	suite.Equal("Replaced", body["title"])
	suite.Equal("", body["description"])
	suite.Equal("P", body["status"])

	stored := suite.getTask(task.ID)
	suite.Equal("Replaced", stored.Title)
	suite.Equal(models.TaskStatusPending, stored.Status)
}

func (suite *TaskHandlerTestSuite) TestReplaceTaskIsIdempotent() {
	task := suite.env.createTask(suite.T(), "Stable", "Same every time", models.TaskStatusCompleted)

	w := suite.env.do(http.MethodGet, taskPath(task.ID), nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	original := decodeBody(suite.T(), w)

	for i := 0; i < 2; i++ {
		w = suite.env.do(http.MethodPut, taskPath(task.ID), original, suite.staffToken)
		suite.Equal(http.StatusOK, w.Code)
		suite.Equal(original, decodeBody(suite.T(), w))
	}
}

func (suite *TaskHandlerTestSuite) TestReplaceTaskRequiresTitle() {
	task := suite.env.createTask(suite.T(), "Original", "", models.TaskStatusPending)

	w := suite.env.do(http.MethodPut, taskPath(task.ID), map[string]any{"status": "C"}, suite.userToken)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(models.TaskStatusPending, suite.getTask(task.ID).Status)
}

func (suite *TaskHandlerTestSuite) TestReplaceTaskNotFound() {
	w := suite.env.do(http.MethodPut, "/api/tasks/999", map[string]any{"title": "Missing"}, suite.userToken)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal(int64(0), suite.env.countTasks(suite.T()))
}

// Test PatchTask
func (suite *TaskHandlerTestSuite) TestPatchTaskKeepsOtherFields() {
	w := suite.env.do(http.MethodPost, "/api/tasks", map[string]any{
		"title":       "Buy milk",
		"description": "",
		"due_date":    nil,
	}, suite.userToken)
	suite.Require().Equal(http.StatusCreated, w.Code)
	created := decodeBody(suite.T(), w)
	suite.Equal("P", created["status"])

	id := uint64(created["id"].(float64))
	w = suite.env.do(http.MethodPatch, taskPath(id), map[string]any{"status": "C"}, suite.userToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	body := decodeBody(suite.T(), w)
	suite.Equal("Buy milk", body["title"])
	suite.Equal("", body["description"])
	suite.Nil(body["due_date"])
	suite.Equal("C", body["status"])
}

func (suite *TaskHandlerTestSuite) TestPatchTaskClearsDueDate() {
	task := suite.env.createTask(suite.T(), "Deadline", "", models.TaskStatusPending)
	suite.Require().NoError(suite.env.db.Model(task).Update("due_date", time.Now().UTC()).Error)

	w := suite.env.do(http.MethodPatch, taskPath(task.ID), map[string]any{"due_date": nil}, suite.userToken)
	suite.Equal(http.StatusOK, w.Code)
	suite.Nil(decodeBody(suite.T(), w)["due_date"])
	suite.Nil(suite.getTask(task.ID).DueDate)
}

func (suite *TaskHandlerTestSuite) TestPatchTaskInvalidStatus() {
	task := suite.env.createTask(suite.T(), "Original", "", models.TaskStatusPending)

	w := suite.env.do(http.MethodPatch, taskPath(task.ID), map[string]any{"status": "X"}, suite.userToken)
	suite.Equal(http.StatusBadRequest, w.Code)
	details := decodeBody(suite.T(), w)["details"].(map[string]any)
	suite.Equal([]any{"Invalid status. Acceptable values: P, IP, C"}, details["status"])
	suite.Equal(models.TaskStatusPending, suite.getTask(task.ID).Status)
}

func (suite *TaskHandlerTestSuite) TestPatchTaskNullTitle() {
	task := suite.env.createTask(suite.T(), "Original", "", models.TaskStatusPending)

	w := suite.env.do(http.MethodPatch, taskPath(task.ID), map[string]any{"title": nil}, suite.userToken)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Original", suite.getTask(task.ID).Title)
}

func (suite *TaskHandlerTestSuite) TestPatchTaskNotFound() {
	w := suite.env.do(http.MethodPatch, "/api/tasks/999", map[string]any{"status": "C"}, suite.userToken)
	suite.Equal(http.StatusNotFound, w.Code)
}

// Test DeleteTask
func (suite *TaskHandlerTestSuite) TestDeleteTaskRequiresStaff() {
	task := suite.env.createTask(suite.T(), "Keep me", "", models.TaskStatusPending)

	w := suite.env.do(http.MethodDelete, taskPath(task.ID), nil, suite.userToken)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("FORBIDDEN", decodeBody(suite.T(), w)["code"])
	suite.Equal(int64(1), suite.env.countTasks(suite.T()))
}

func (suite *TaskHandlerTestSuite) TestStaffCanDeleteTask() {
	task := suite.env.createTask(suite.T(), "Delete me", "", models.TaskStatusPending)
	suite.env.createTask(suite.T(), "Stay", "", models.TaskStatusPending)

	w := suite.env.do(http.MethodDelete, taskPath(task.ID), nil, suite.staffToken)
	suite.Equal(http.StatusNoContent, w.Code)
	suite.Empty(w.Body.String())

	suite.Equal(int64(1), suite.env.countTasks(suite.T()))
	w = suite.env.do(http.MethodGet, taskPath(task.ID), nil, "")
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.env.do(http.MethodDelete, taskPath(task.ID), nil, suite.staffToken)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestRevokedStaffCannotDelete() {
	task := suite.env.createTask(suite.T(), "Keep me", "", models.TaskStatusPending)

	// The token still claims staff, but the account no longer is.
	suite.Require().NoError(suite.env.db.Model(&models.User{}).
		Where("username = ?", "admin").
		Update("is_staff", false).Error)

	w := suite.env.do(http.MethodDelete, taskPath(task.ID), nil, suite.staffToken)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal(int64(1), suite.env.countTasks(suite.T()))
}

func (suite *TaskHandlerTestSuite) TestInactiveUserIsAnonymous() {
	suite.Require().NoError(suite.env.db.Model(&models.User{}).
		Where("username = ?", "user").
		Update("is_active", false).Error)

	w := suite.env.do(http.MethodPost, "/api/tasks", map[string]any{"title": "New"}, suite.userToken)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *TaskHandlerTestSuite) TestRequestIDHeader() {
	w := suite.env.do(http.MethodGet, "/health", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.NotEmpty(w.Header().Get("X-Request-ID"))
}

// Run the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
