package worker

import (
	"fmt"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/mq"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/notify"
)

// StartAllWorkers 启动应用中所有定义的后台 Worker
func StartAllWorkers(mqClient *mq.RabbitMQClient, mailer notify.Mailer) error {
	// --- 启动邮件发送 Worker ---
	mailWorker := NewMailWorker(mqClient, mailer)
	if err := mailWorker.Start(); err != nil {
		return fmt.Errorf("启动邮件 worker 失败: %w", err)
	}

	logger.Info("所有后台工作进程已启动。")
	return nil
}
