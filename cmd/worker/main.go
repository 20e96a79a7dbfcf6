package main

import (
	"time"

	"go.uber.org/zap"

	"taskman/config"
	mqcontracts "taskman/contracts/mq"
	"taskman/internal/mqhandler"
	"taskman/internal/repository"
	"taskman/internal/service/worker"
	"taskman/pkg/db"
	"taskman/pkg/logger"
	"taskman/pkg/mq"
	redisclient "taskman/pkg/redis"
	"taskman/pkg/util"
)

func main() {
	// Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting worker...")

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, time.Hour, log)

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Repositories + Service
	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	notificationService := worker.NewNotificationService(notificationRepo, log)

	// Init Handlers
	createdHandler := mqhandler.NewTaskCreatedHandler(notificationService, deduper, log)
	statusHandler := mqhandler.NewTaskStatusChangedHandler(notificationService, deduper, log)
	commentHandler := mqhandler.NewTaskCommentAddedHandler(notificationService, deduper, log)

	// (1) Consumer for task.created
	consumerCreated, err := mq.NewConsumer(cfg.MQ.URL, "task.created.notify.q", mqcontracts.RoutingKeyTaskCreated, log)
	if err != nil {
		log.Fatal("failed to init task.created consumer", zap.Error(err))
	}
	consumerCreated.SetHandler(createdHandler.Handle)
	go func() {
		if err := consumerCreated.StartConsuming(); err != nil {
			log.Fatal("task.created consumer failed", zap.Error(err))
		}
	}()
	defer consumerCreated.Close()

	// (2) Consumer for task.status_changed
	consumerStatus, err := mq.NewConsumer(cfg.MQ.URL, "task.status_changed.notify.q", mqcontracts.RoutingKeyTaskStatusChanged, log)
	if err != nil {
		log.Fatal("failed to init task.status_changed consumer", zap.Error(err))
	}
	consumerStatus.SetHandler(statusHandler.Handle)
	go func() {
		if err := consumerStatus.StartConsuming(); err != nil {
			log.Fatal("task.status_changed consumer failed", zap.Error(err))
		}
	}()
	defer consumerStatus.Close()

	// (3) Consumer for task.comment_added
	consumerComment, err := mq.NewConsumer(cfg.MQ.URL, "task.comment_added.notify.q", mqcontracts.RoutingKeyTaskCommentAdded, log)
	if err != nil {
		log.Fatal("failed to init task.comment_added consumer", zap.Error(err))
	}
	consumerComment.SetHandler(commentHandler.Handle)
	go func() {
		if err := consumerComment.StartConsuming(); err != nil {
			log.Fatal("task.comment_added consumer failed", zap.Error(err))
		}
	}()
	defer consumerComment.Close()

	log.Info("All consumers started, worker is ready to process messages")

	// Keep worker running
	select {}
}
