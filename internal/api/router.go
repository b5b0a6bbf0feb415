package api

import (
	"github.com/gin-gonic/gin"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/api/handler"
	"github.com/revpulse/feedback_go_server/internal/api/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	pipelineHandler     *handler.PipelineHandler
	importHandler       *handler.ImportHandler
	reviewHandler       *handler.ReviewHandler
	dashboardHandler    *handler.DashboardHandler
	topicHandler        *handler.TopicHandler
	notificationHandler *handler.NotificationHandler
	chatHandler         *handler.ChatHandler
	websocketHandler    *handler.WebSocketHandler
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	pipelineHandler *handler.PipelineHandler,
	importHandler *handler.ImportHandler,
	reviewHandler *handler.ReviewHandler,
	dashboardHandler *handler.DashboardHandler,
	topicHandler *handler.TopicHandler,
	notificationHandler *handler.NotificationHandler,
	chatHandler *handler.ChatHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		pipelineHandler:     pipelineHandler,
		importHandler:       importHandler,
		reviewHandler:       reviewHandler,
		dashboardHandler:    dashboardHandler,
		topicHandler:        topicHandler,
		notificationHandler: notificationHandler,
		chatHandler:         chatHandler,
		websocketHandler:    websocketHandler,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket 进度推送
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.GET("/user/profile", r.authHandler.Profile)

			// 批量处理管道控制
			pipeline := authenticated.Group("/admin/pipeline")
			{
				pipeline.POST("/start", r.pipelineHandler.Start)
				pipeline.POST("/stop", r.pipelineHandler.Stop)
				pipeline.GET("/status", r.pipelineHandler.Status)
				pipeline.POST("/pending-count", r.pipelineHandler.PendingCount)
				pipeline.POST("/logs/clear", r.pipelineHandler.ClearLogs)
				pipeline.POST("/reset-failed", r.pipelineHandler.ResetFailed)
			}

			// CSV 导入
			authenticated.POST("/admin/import", r.importHandler.Upload)
			authenticated.GET("/admin/import/history", r.importHandler.History)

			// 评价
			reviews := authenticated.Group("/reviews")
			{
				reviews.GET("", r.reviewHandler.List)
				reviews.POST("", r.reviewHandler.Create)
				reviews.GET("/:id", r.reviewHandler.Get)
				reviews.PUT("/:id/resolution", r.reviewHandler.UpdateResolution)
			}

			// 总览
			dashboard := authenticated.Group("/dashboard")
			{
				dashboard.GET("/metrics", r.dashboardHandler.Metrics)
				dashboard.GET("/sentiment-trend", r.dashboardHandler.SentimentTrend)
				dashboard.GET("/region-sentiment", r.dashboardHandler.RegionSentiment)
			}

			// 主题
			topics := authenticated.Group("/topics")
			{
				topics.GET("", r.topicHandler.List)
				topics.GET("/analytics", r.topicHandler.Analytics)
				topics.GET("/:id/reviews", r.topicHandler.Reviews)
				topics.GET("/:id/top-state", r.topicHandler.TopState)
			}

			// 通知
			notifications := authenticated.Group("/notifications")
			{
				notifications.GET("", r.notificationHandler.List)
				notifications.GET("/unread-count", r.notificationHandler.UnreadCount)
				notifications.PUT("/read-all", r.notificationHandler.MarkAllRead)
				notifications.PUT("/:id/read", r.notificationHandler.MarkRead)
				notifications.PUT("/:id/snooze", r.notificationHandler.Snooze)
			}

			// 主题问答
			authenticated.POST("/chat/ask", r.chatHandler.Ask)
		}
	}

	return engine
}
