package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/config"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/cache"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/mq"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/mq/worker"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/notify"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/storage"
	"github.com/3Eeeecho/go-secureprint/internal/repositories"
	"github.com/3Eeeecho/go-secureprint/internal/router"
	"github.com/3Eeeecho/go-secureprint/internal/services/admin"
	"github.com/3Eeeecho/go-secureprint/internal/services/explorer"
	"github.com/3Eeeecho/go-secureprint/internal/services/share"
	"github.com/3Eeeecho/go-secureprint/internal/setup"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	notifyTimeout   = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	httpServer     *http.Server
	db             *gorm.DB
	redisClient    *redis.Client
	mongoClient    *mongo.Client
	rabbitMQClient *mq.RabbitMQClient
	dispatcher     notify.Dispatcher
}

// NewServer 负责构建所有依赖
// 出错时已经建立的连接会被关闭
func NewServer(ctx context.Context, cfg *config.Config) (srv *Server, err error) {
	s := &Server{}
	defer func() {
		if err != nil {
			s.close()
		}
	}()

	// 初始化数据库连接
	if s.db, err = setup.InitMySQL(&cfg.MySQL); err != nil {
		return nil, fmt.Errorf("failed to initialize MySQL: %w", err)
	}

	// Redis 可选, 用于验证码失败次数限制
	if s.redisClient, err = setup.InitRedis(ctx, &cfg.Redis); err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// GridFS 存储需要 MongoDB
	if cfg.Storage.Type == "gridfs" {
		if s.mongoClient, err = setup.InitMongo(ctx, &cfg.Mongo); err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
		}
	}

	ss, err := setup.InitStorage(cfg, s.mongoClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// 初始化邮件通知
	mailer := notify.NewSMTPMailer(cfg.SMTP)
	if cfg.SMTP.Username == "" {
		logger.Warn("未配置 SMTP 账号, 邮件将无法发送")
	}
	if cfg.RabbitMQ.URL != "" {
		//初始化rabbitmq
		if s.rabbitMQClient, err = mq.NewRabbitMQClient(cfg.RabbitMQ.URL); err != nil {
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		if _, err = s.rabbitMQClient.DeclareQueue(notify.MailQueueName); err != nil {
			return nil, fmt.Errorf("failed to declare mail queue: %w", err)
		}
		s.dispatcher = notify.NewMQDispatcher(s.rabbitMQClient, notify.MailQueueName)
	} else {
		s.dispatcher = notify.NewAsyncDispatcher(mailer, notifyTimeout)
	}

	//  初始化 Repositories
	userRepo := repositories.NewUserRepository(s.db)
	fileRepo := repositories.NewFileRepository(s.db, cfg.Cache.MetadataSize, cfg.Cache.MetadataTTL)
	linkRepo := repositories.NewLinkRepository(s.db)

	//  初始化 Services
	var linkOpts []share.Option
	if cfg.Link.MaxFailedAttempts > 0 {
		if s.redisClient == nil {
			logger.Warn("link.max_failed_attempts 需要 Redis, 未配置 Redis 时不限制验证次数")
		} else {
			linkOpts = append(linkOpts, share.WithAttemptLimiter(
				share.NewCacheLimiter(cache.NewRedisCache(s.redisClient), cfg.Link.MaxFailedAttempts)))
		}
	}
	authService := admin.NewAuthService(userRepo, cfg.JWT)
	fileService := explorer.NewFileService(fileRepo, ss, storage.BucketName(cfg))
	linkService := share.NewLinkService(linkRepo, fileService, mailer, s.dispatcher, cfg.Link, linkOpts...)

	// 启动所有后台 Worker
	if s.rabbitMQClient != nil {
		if err = worker.StartAllWorkers(s.rabbitMQClient, mailer); err != nil {
			return nil, err
		}
	}

	// 初始化 Gin 引擎和注册路由
	engine := router.InitRouter(router.NewRouterConfig(authService, fileService, linkService, cfg))

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Run 启动服务器，并处理优雅关机
func (s *Server) Run(stopChan <-chan os.Signal) {
	// 确保在应用关闭时，所有连接都被释放
	defer s.close()

	// 启动 HTTP 服务器
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Server is running", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// 等待停止信号
	select {
	case <-stopChan:
		logger.Info("Shutting down server...")
	case err := <-errChan:
		logger.Error("Server failed to start", zap.Error(err))
		return
	}

	// 优雅关机
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited gracefully")
}

// close 等待未完成的通知后按依赖逆序释放连接
func (s *Server) close() {
	if s.dispatcher != nil {
		s.dispatcher.Wait()
	}
	if s.rabbitMQClient != nil {
		s.rabbitMQClient.Close()
	}
	setup.CloseRedis(s.redisClient)
	setup.CloseMongo(s.mongoClient)
	setup.CloseMySQLDB(s.db)
}
