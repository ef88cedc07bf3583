package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/to-do-list-api/internal/middleware"
)

// NewRouter wires the task and token routes onto a gin engine.
func NewRouter(taskHandler *TaskHandler, authHandler *AuthHandler, resolver middleware.IdentityResolver, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(extra...)
	r.Use(gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "To-Do List API is running",
		})
	})

	api := r.Group("/api")
	{
		// Token routes (public)
		token := api.Group("/token")
		{
			token.POST("/", authHandler.ObtainToken)
			token.POST("/refresh/", authHandler.RefreshToken)
		}

		// Task routes. Anonymous callers may read; the service decides the rest.
		tasks := api.Group("/tasks")
		tasks.Use(middleware.Authenticate(resolver))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.ReplaceTask)
			tasks.PATCH("/:id", taskHandler.PatchTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}
	}

	return r
}
