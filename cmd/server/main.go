// Package main 是应用程序的入口点。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-go/internal/config"
	"portfolio-go/internal/handler"
	"portfolio-go/internal/repository"
	"portfolio-go/internal/responder"
	"portfolio-go/internal/router"
	"portfolio-go/internal/service"
	"portfolio-go/pkg/database"
	"portfolio-go/pkg/log"
	"portfolio-go/pkg/token"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化会话存储
	checks := map[string]handler.HealthCheck{}
	var conversationRepo repository.ConversationRepository
	switch cfg.Session.Store {
	case config.StoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := database.InitRedis(ctx, cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		cancel()
		if err != nil {
			log.Fatal("Redis 初始化失败", err)
		}
		defer rdb.Close()
		conversationRepo = repository.NewConversationRepository(rdb, cfg.Chat.SessionTTL)
		checks["redis"] = database.RedisPing(rdb)
	default:
		sweepCtx, stopSweeper := context.WithCancel(context.Background())
		defer stopSweeper()
		conversationRepo = repository.NewMemoryConversationRepository(sweepCtx, cfg.Chat.SessionTTL)
	}
	log.Infof("会话存储: %s", cfg.Session.Store)

	// 4. 初始化 Service (依赖注入)
	secret := cfg.JWT.Secret
	if secret == "" {
		secret = token.GenerateRandomString(32)
		log.Warnf("jwt.secret 未配置，使用随机密钥，重启后已签发的会话令牌将失效")
	}
	jwtManager := token.NewJWTManager(secret, cfg.Chat.SessionTTL)
	chatService := service.NewChatService(responder.New(cfg.Portfolio.Profile), conversationRepo, cfg.Chat)
	contactService := service.NewContactService()
	portfolioService := service.NewPortfolioService(cfg.Portfolio)

	// 5. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := router.Setup(router.Handlers{
		Chat:      handler.NewChatHandler(chatService, jwtManager, cfg.Server.AllowedOrigins),
		Contact:   handler.NewContactHandler(contactService),
		Portfolio: handler.NewPortfolioHandler(portfolioService),
		Health:    handler.NewHealthHandler(checks),
	}, jwtManager, cfg.Server.AllowedOrigins)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
