package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/3Eeeecho/go-secureprint/cmd/server"
	"github.com/3Eeeecho/go-secureprint/internal/config"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"go.uber.org/zap"
)

// @title SecurePrint API
// @version 1.0
// @description 文档上传, 限时验证码打印链接
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("加载配置出错", zap.Error(err))
	}

	//初始化日志系统
	for _, p := range []string{cfg.Log.OutputPath, cfg.Log.ErrorPath} {
		if p == "" || p == "stdout" || p == "stderr" {
			continue
		}
		if err = os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			logger.Fatal("初始化日志系统失败", zap.Error(err))
		}
	}
	logger.InitLogger(cfg.Log.OutputPath, cfg.Log.ErrorPath, cfg.Log.Level)
	defer logger.Sync() // 确保在应用退出时刷新所有缓冲的日志条目

	// 缺少数据库连接串时直接退出, 不对外提供服务
	if err := cfg.Validate(); err != nil {
		logger.Fatal("配置校验失败", zap.Error(err))
	}

	logger.Info("启动 SecurePrint 服务...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 创建并构建应用服务器实例
	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		logger.Fatal("无法启动应用程序", zap.Error(err))
	}

	// 创建一个通道用于接收停止信号
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// 启动服务器
	srv.Run(stopChan)

	logger.Info("SecurePrint 服务已退出。")
}
