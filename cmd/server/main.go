package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/yukikurage/toondo/internal/config"
	"github.com/yukikurage/toondo/internal/constants"
	"github.com/yukikurage/toondo/internal/database"
	"github.com/yukikurage/toondo/internal/handlers"
	"github.com/yukikurage/toondo/internal/logger"
	"github.com/yukikurage/toondo/internal/middleware"
	"github.com/yukikurage/toondo/internal/repository"
	"github.com/yukikurage/toondo/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg)
	log := logger.L()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Repositories and services
	storage := repository.NewStorageRepository(db)
	userRepo := repository.NewUserRepository(storage)
	authService := services.NewAuthService(userRepo, storage)
	taskService := services.NewTaskService(storage, userRepo, nil)
	if err := taskService.Load(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to load tasks")
	}

	aiService := services.NewAIService(cfg.OpenAI)
	if !aiService.Configured() {
		log.Warn().Msg("OPENAI_API_KEY is not set, AI endpoints are disabled")
	}
	importer := services.NewMarkdownImporter()

	// Initialize Gin router
	r := gin.New()
	r.Use(logger.RequestLogger(), gin.Recovery())

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session store")
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, services.NewCardPrinter())
	checklistHandler := handlers.NewChecklistHandler(taskService)
	applicantHandler := handlers.NewApplicantHandler(taskService)
	dragHandler := handlers.NewDragHandler(taskService)
	aiHandler := handlers.NewAIHandler(aiService, importer)
	importHandler := handlers.NewImportHandler(taskService, importer)
	imageHandler := handlers.NewImageHandler(services.NewPlaceholderImageSearch())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "ToonDo List API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Everything below needs a resolved user
		protected := api.Group("")
		protected.Use(middleware.RequireAuth(), middleware.LoadActor(taskService))

		protected.GET("/users", userHandler.ListUsers)

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskAccess(taskService), taskHandler.GetTask)
			tasks.GET("/:id/print", middleware.RequireTaskAccess(taskService), taskHandler.PrintTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/reorder", taskHandler.ReorderTask)
			tasks.PUT("/:id/roles", taskHandler.SetRoles)

			tasks.POST("/:id/applicants", applicantHandler.AddApplicant)
			tasks.POST("/:id/applicants/:applicant_id/accept", applicantHandler.AcceptApplicant)
			tasks.POST("/:id/applicants/:applicant_id/reject", applicantHandler.RejectApplicant)
			tasks.DELETE("/:id/applicants/:applicant_id", applicantHandler.RemoveApplicant)

			tasks.POST("/:id/items", checklistHandler.AddItem)
			tasks.PATCH("/:id/items/:item_id", checklistHandler.UpdateItem)
			tasks.DELETE("/:id/items/:item_id", checklistHandler.DeleteItem)
			tasks.POST("/:id/items/:item_id/toggle", checklistHandler.ToggleItem)
			tasks.PUT("/:id/items/:item_id/labels", checklistHandler.SetLabels)
			tasks.POST("/:id/items/:item_id/comments", checklistHandler.AddComment)
		}

		drag := protected.Group("/drag")
		{
			drag.POST("/pickup", dragHandler.PickUp)
			drag.POST("/hover", dragHandler.Hover)
			drag.POST("/drop", dragHandler.Drop)
			drag.POST("/cancel", dragHandler.Cancel)
		}

		ai := protected.Group("/ai")
		{
			ai.POST("/suggest-due-date", aiHandler.SuggestDueDate)
			ai.POST("/breakdown", aiHandler.BreakdownTask)
			ai.POST("/parse-tasks", aiHandler.ParseTasks)
		}

		protected.POST("/import/markdown", importHandler.ImportMarkdown)
		protected.GET("/images/search", imageHandler.Search)
	}

	// Start server
	log.Info().Str("addr", cfg.HTTPAddr).Msg("server starting")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// newSessionStore builds the cookie or redis backed session store.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisAddr := cfg.Session.RedisHost + ":" + cfg.Session.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.Session.Secret),
		)
		if err != nil {
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		store = rs
	default:
		store = cookie.NewStore([]byte(cfg.Session.Secret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
