package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/yukikurage/to-do-list-api/internal/auth"
	"github.com/yukikurage/to-do-list-api/internal/config"
	"github.com/yukikurage/to-do-list-api/internal/database"
	"github.com/yukikurage/to-do-list-api/internal/handlers"
	"github.com/yukikurage/to-do-list-api/internal/repository"
	"github.com/yukikurage/to-do-list-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize services
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:            cfg.JWTSecret,
		AccessTokenDuration:  cfg.AccessTokenTTL,
		RefreshTokenDuration: cfg.RefreshTokenTTL,
		Issuer:               cfg.JWTIssuer,
	})
	authService := services.NewAuthService(repository.NewUserRepository(db), jwtManager)
	taskService := services.NewTaskService(repository.NewTaskRepository(db))

	// Bootstrap the staff account
	if cfg.AdminUsername != "" {
		if _, err := authService.EnsureUser(context.Background(), cfg.AdminUsername, cfg.AdminPassword, true); err != nil {
			log.Fatalf("Failed to bootstrap admin user: %v", err)
		}
		log.Printf("Admin user %q is ready", cfg.AdminUsername)
	}

	// Initialize handlers and router
	taskHandler := handlers.NewTaskHandler(taskService, cfg.PageSize)
	authHandler := handlers.NewAuthHandler(authService)
	r := handlers.NewRouter(taskHandler, authHandler, authService, gin.Logger())

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.CORSAllowedOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
		gorillahandlers.ExposedHeaders([]string{"X-Request-ID"}),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: cors(r),
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// The pool is closed only after in-flight requests drain.
			"http-server": func(ctx context.Context) error {
				log.Println("Shutting down HTTP server...")
				if err := server.Shutdown(ctx); err != nil {
					return err
				}
				return database.Close(db)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
