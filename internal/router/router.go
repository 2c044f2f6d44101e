// Package router 负责注册所有 HTTP 路由。
package router

import (
	"portfolio-go/internal/handler"
	"portfolio-go/internal/middleware"
	"portfolio-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// Handlers 汇总路由需要的所有处理器。
type Handlers struct {
	Chat      *handler.ChatHandler
	Contact   *handler.ContactHandler
	Portfolio *handler.PortfolioHandler
	Health    *handler.HealthHandler
}

// Setup 创建 Gin 引擎并注册中间件与路由。
func Setup(h Handlers, jwtManager *token.JWTManager, allowedOrigins []string) *gin.Engine {
	r := gin.New() // 不带默认中间件
	r.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.CORS(allowedOrigins))

	// 健康检查 (无需认证)
	r.GET("/ping", h.Health.Ping)
	r.GET("/health/live", h.Health.Live)
	r.GET("/health/ready", h.Health.Ready)

	api := r.Group("/api")
	{
		api.POST("/contact", h.Contact.Submit)

		portfolio := api.Group("/portfolio")
		{
			portfolio.GET("", h.Portfolio.GetPortfolio)
			portfolio.GET("/projects", h.Portfolio.ListProjects)
		}

		chat := api.Group("/chat")
		{
			chat.POST("/sessions", h.Chat.StartSession)

			// 需要会话令牌的路由
			authed := chat.Group("")
			authed.Use(middleware.SessionAuth(jwtManager))
			{
				authed.GET("/history", h.Chat.GetHistory)
				authed.POST("/messages", h.Chat.SendMessage)
				authed.DELETE("/sessions", h.Chat.EndSession)
			}
		}
	}

	// Chat 路由 (WebSocket)
	r.GET("/chat/:token", h.Chat.Handle)

	return r
}
