package router

import (
	"net/http"
	"time"

	_ "github.com/3Eeeecho/go-secureprint/docs"
	"github.com/3Eeeecho/go-secureprint/internal/config"
	"github.com/3Eeeecho/go-secureprint/internal/handlers"
	"github.com/3Eeeecho/go-secureprint/internal/middlewares"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/xerr"
	"github.com/3Eeeecho/go-secureprint/internal/services/admin"
	"github.com/3Eeeecho/go-secureprint/internal/services/explorer"
	"github.com/3Eeeecho/go-secureprint/internal/services/share"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig 包含初始化路由所需的所有依赖
type RouterConfig struct {
	authService admin.AuthService
	fileService explorer.FileService
	linkService share.LinkService
	cfg         *config.Config
}

func NewRouterConfig(authService admin.AuthService, fileService explorer.FileService, linkService share.LinkService, cfg *config.Config) *RouterConfig {
	return &RouterConfig{
		authService: authService,
		fileService: fileService,
		linkService: linkService,
		cfg:         cfg,
	}
}

func InitRouter(routerCfg *RouterConfig) *gin.Engine {
	if routerCfg.cfg.Server.Mode != "" {
		gin.SetMode(routerCfg.cfg.Server.Mode)
	}

	router := gin.New()

	// 全局中间件
	router.Use(middlewares.RequestLogger(), gin.Recovery(), middlewares.Metrics())
	// 打印端页面与后端不同源, 链接接口需要允许跨域
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	// Health Check 路由
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authHandler := handlers.NewAuthHandler(routerCfg.authService)
	uploadHandler := handlers.NewUploadHandler(routerCfg.fileService)
	linkHandler := handlers.NewLinkHandler(routerCfg.linkService)

	api := router.Group("/api")
	{
		// 认证相关路由 (无需认证)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.POST("/login", authHandler.Login)
		}

		// 需要认证的路由组
		authenticated := api.Group("")
		authenticated.Use(middlewares.AuthMiddleware(routerCfg.cfg.JWT.SecretKey))
		{
			authenticated.POST("/upload", uploadHandler.Upload)
			authenticated.POST("/link/generate", linkHandler.Generate)
			authenticated.POST("/link/send", linkHandler.Send)
		}

		// 打印端使用的公开路由, 由链接状态控制访问
		public := api.Group("/link/:id")
		{
			public.POST("/validate", linkHandler.Validate)
			public.GET("/blob", linkHandler.Blob)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		xerr.Error(c, http.StatusNotFound, xerr.NotFoundCode, "not found")
	})

	return router
}
