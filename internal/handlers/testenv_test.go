package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/to-do-list-api/internal/auth"
	"github.com/yukikurage/to-do-list-api/internal/database"
	"github.com/yukikurage/to-do-list-api/internal/models"
	"github.com/yukikurage/to-do-list-api/internal/repository"
	"github.com/yukikurage/to-do-list-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPageSize = 10

type apiTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
	jwtManager  *auth.JWTManager
}

func setupAPITestEnv(t *testing.T) apiTestEnv {
	t.Helper()
	return setupAPITestEnvWithPageSize(t, testPageSize)
}

func setupAPITestEnvWithPageSize(t *testing.T, pageSize int) apiTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:            "test-secret-key",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: time.Hour,
		Issuer:               "test-issuer",
	})
	authService := services.NewAuthService(repository.NewUserRepository(db), jwtManager)
	taskService := services.NewTaskService(repository.NewTaskRepository(db))

	router := NewRouter(
		NewTaskHandler(taskService, pageSize),
		NewAuthHandler(authService),
		authService,
	)

	return apiTestEnv{
		db:          db,
		router:      router,
		authService: authService,
		jwtManager:  jwtManager,
	}
}

func (env apiTestEnv) createUser(t *testing.T, username, password string, isStaff bool) *models.User {
	t.Helper()
	user, err := env.authService.EnsureUser(context.Background(), username, password, isStaff)
	require.NoError(t, err)
	return user
}

func (env apiTestEnv) accessToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := env.jwtManager.GenerateAccessToken(user.ID, user.IsStaff)
	require.NoError(t, err)
	return token
}

func (env apiTestEnv) createTask(t *testing.T, title, description string, status models.TaskStatus) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:       title,
		Description: description,
		Status:      status,
	}
	require.NoError(t, env.db.Create(task).Error)
	return task
}

func (env apiTestEnv) countTasks(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Model(&models.Task{}).Count(&count).Error)
	return count
}

// do sends a request through the router. A map body is sent as JSON,
// url.Values as a form, and a string as a raw JSON body.
func (env apiTestEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var (
		reader      *bytes.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case url.Values:
		reader = bytes.NewReader([]byte(b.Encode()))
		contentType = "application/x-www-form-urlencoded"
	case string:
		reader = bytes.NewReader([]byte(b))
		contentType = "application/json"
	default:
		encoded, _ := json.Marshal(b)
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func taskPath(id uint64) string {
	return "/api/tasks/" + strconv.FormatUint(id, 10)
}
