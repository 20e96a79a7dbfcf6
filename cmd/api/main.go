package main

import (
	"go.uber.org/zap"

	"taskman/config"
	"taskman/internal/handler"
	"taskman/internal/httpserver"
	"taskman/internal/repository"
	"taskman/internal/service"
	"taskman/pkg/db"
	"taskman/pkg/logger"
	"taskman/pkg/mq"
)

func main() {
	// Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init RabbitMQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Init Repositories
	userRepo := repository.NewUserRepository(dbConn, log)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)

	// Init Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, log)
	userService := service.NewUserService(userRepo, taskRepo, projectRepo, log)
	projectService := service.NewProjectService(projectRepo, taskRepo, userRepo, log)
	taskService := service.NewTaskService(taskRepo, projectRepo, userRepo, publisher, log)
	notificationService := service.NewNotificationService(notificationRepo, log)

	// Init Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	userHandler := handler.NewUserHandler(userService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)

	// Router
	router := httpserver.NewRouter(
		authHandler,
		userHandler,
		projectHandler,
		taskHandler,
		notificationHandler,
		cfg.JWT.Secret,
		dbConn,
		log,
	)

	// Start API server
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
