package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/domainpack/service/internal/api"
	"github.com/domainpack/service/internal/config"
	"github.com/domainpack/service/internal/llm"
	"github.com/domainpack/service/internal/services"
	"github.com/domainpack/service/internal/store"
	"github.com/domainpack/service/internal/utils"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	utils.InitLogger(cfg.LogLevel)
	logrus.Infof("启动 %s v%s ...", cfg.ServiceName, cfg.AppVersion)

	// 设置Gin模式
	if cfg.GinMode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建Gin路由器
	router := gin.New()

	// 添加中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(utils.TraceIDMiddleware())

	// 配置CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Trace-ID"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "X-Trace-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// 初始化文档存储，MongoDB不可达时回退到内存存储
	documentStore := initDocumentStore(cfg)
	defer func() {
		if err := documentStore.Close(context.Background()); err != nil {
			logrus.Errorf("关闭文档存储失败: %v", err)
		}
	}()

	// 初始化意图解析服务
	// 构造失败不中断启动：/intent 会返回配置错误，/intent/health 报告degraded
	intentService := services.NewIntentService(cfg, llm.NewFactory())

	// 注册路由
	handler := api.NewHandler(intentService, documentStore, cfg)
	handler.RegisterRoutes(router)

	// 启动HTTP服务器
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.HTTPServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP服务器监听: %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP服务器启动失败: %v", err)
		}
	}()

	// 等待退出信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("收到退出信号，开始优雅关闭...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("服务器关闭异常: %v", err)
	}
	logrus.Info("服务器已退出")
}

// initDocumentStore 按配置选择文档存储实现
// mongo类型连接失败时回退到内存存储，保证服务可启动
func initDocumentStore(cfg *config.Config) store.DocumentStore {
	switch cfg.StoreType {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		mongoStore, err := store.NewMongoDocumentStore(ctx, cfg.MongoURI, cfg.DatabaseName, cfg.CollectionName)
		if err != nil {
			logrus.Warnf("MongoDB连接失败，回退到内存存储: %v", err)
			return store.NewMemoryDocumentStore()
		}
		return mongoStore

	case "memory":
		logrus.Info("使用内存文档存储")
		return store.NewMemoryDocumentStore()

	default:
		logrus.Warnf("未知的存储类型 %q，回退到内存存储", cfg.StoreType)
		return store.NewMemoryDocumentStore()
	}
}
