package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/classifier"
	"github.com/revpulse/feedback_go_server/internal/database"
	"github.com/revpulse/feedback_go_server/internal/pkg/queue"
	"github.com/revpulse/feedback_go_server/internal/repository"
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

	// 初始化队列
	reviewQueue := queue.NewQueue(rdb, cfg.Queue.ReviewQueue)

	// 初始化 Repository 和分类器
	reviewRepo := repository.NewReviewRepository(db)
	topicRepo := repository.NewTopicRepository(db)

	clf, err := classifier.New(&cfg.Classifier)
	if err != nil {
		log.Fatalf("Failed to init classifier: %v", err)
	}
	log.Printf("Classifier provider: %s", cfg.Classifier.Provider)

	// 创建消息处理器
	runner := worker.NewBatchRunner(reviewRepo, topicRepo, clf, cfg)
	processor := worker.NewProcessor(reviewRepo, runner)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	log.Printf("Worker started, max workers: %d", cfg.Queue.MaxWorkers)

	// 启动 worker 循环
	for i := 0; i < cfg.Queue.MaxWorkers; i++ {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Worker %d shutting down", workerID)
					return
				default:
					// 从队列获取消息
					msg, err := reviewQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						log.Printf("Worker %d: failed to pop message: %v", workerID, err)
						continue
					}

					if msg == nil {
						continue // 超时，继续等待
					}

					log.Printf("Worker %d: processing review %d", workerID, msg.RowID)
					if err := processor.Process(ctx, msg); err != nil {
						log.Printf("Worker %d: review %d failed: %v", workerID, msg.RowID, err)
					}
				}
			}
		}(i)
	}

	// 等待 context 取消
	<-ctx.Done()
	log.Println("Worker shutdown complete")
}
