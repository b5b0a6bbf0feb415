package main

import (
	"context"
	"fmt"
	"log"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/api"
	"github.com/revpulse/feedback_go_server/internal/api/handler"
	"github.com/revpulse/feedback_go_server/internal/classifier"
	"github.com/revpulse/feedback_go_server/internal/database"
	"github.com/revpulse/feedback_go_server/internal/pkg/cron"
	"github.com/revpulse/feedback_go_server/internal/pkg/oss"
	"github.com/revpulse/feedback_go_server/internal/pkg/pubsub"
	"github.com/revpulse/feedback_go_server/internal/pkg/queue"
	"github.com/revpulse/feedback_go_server/internal/pkg/ws"
	"github.com/revpulse/feedback_go_server/internal/repository"
	"github.com/revpulse/feedback_go_server/internal/service"
	"github.com/revpulse/feedback_go_server/internal/worker"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS（可选，未配置时导入不归档）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 初始化 Queue 和 Pub/Sub
	reviewQueue := queue.NewQueue(rdb, cfg.Queue.ReviewQueue)
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	importRepo := repository.NewImportRepository(db)

	// 初始化分类器和批量处理编排器
	clf, err := classifier.New(&cfg.Classifier)
	if err != nil {
		log.Fatalf("Failed to init classifier: %v", err)
	}
	log.Printf("Classifier provider: %s", cfg.Classifier.Provider)

	runner := worker.NewBatchRunner(reviewRepo, topicRepo, clf, cfg)
	orchestrator := worker.NewOrchestrator(runner, reviewRepo, cfg)
	orchestrator.OnProgress(func(s worker.RunState) {
		msg := &pubsub.ProgressMessage{
			RunID:          s.RunID,
			Running:        s.Running,
			TotalSucceeded: s.TotalSucceeded,
			TotalFailed:    s.TotalFailed,
			PendingCount:   s.PendingCount,
			Progress:       s.Progress,
			BatchNumber:    s.BatchNumber,
			Exhausted:      s.Exhausted,
			Logs:           s.Logs,
		}
		if err := publisher.PublishProgress(context.Background(), msg); err != nil {
			log.Printf("Failed to publish progress: %v", err)
		}
	})

	// 订阅进度消息并广播到 WebSocket（包含其它进程发布的进度）
	go func() {
		err := subscriber.Subscribe(context.Background(), func(msg *pubsub.ProgressMessage) {
			if err := wsHub.Broadcast(&ws.Message{Type: msg.Type, Data: msg}); err != nil {
				log.Printf("Failed to broadcast progress: %v", err)
			}
		})
		if err != nil && err != context.Canceled {
			log.Printf("Progress subscriber stopped: %v", err)
		}
	}()

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg)
	topicService := service.NewTopicService(topicRepo)
	reviewService := service.NewReviewService(reviewRepo, topicRepo)
	ingestService := service.NewIngestService(reviewRepo, reviewQueue)
	importService := service.NewImportService(reviewRepo, importRepo, ossClient, &cfg.Import)
	notificationService := service.NewNotificationService(notificationRepo)
	chatService := service.NewChatService(reviewRepo, topicRepo, &cfg.Chat)

	// 播种固定主题词表
	if err := topicService.Seed(classifier.Topics); err != nil {
		log.Fatalf("Failed to seed topics: %v", err)
	}

	// 启动告警扫描和维护任务
	cronService := cron.NewService(reviewRepo, notificationRepo, &cfg.Alerts)
	cronService.Start()
	defer cronService.Stop()
	log.Println("Cron service started")

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	pipelineHandler := handler.NewPipelineHandler(orchestrator, reviewRepo)
	importHandler := handler.NewImportHandler(importService)
	reviewHandler := handler.NewReviewHandler(reviewService, ingestService)
	dashboardHandler := handler.NewDashboardHandler(reviewService)
	topicHandler := handler.NewTopicHandler(topicService, reviewService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	chatHandler := handler.NewChatHandler(chatService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		pipelineHandler,
		importHandler,
		reviewHandler,
		dashboardHandler,
		topicHandler,
		notificationHandler,
		chatHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
