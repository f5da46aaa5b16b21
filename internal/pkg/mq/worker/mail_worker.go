package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/mq"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/notify"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	sendTimeout = 30 * time.Second
	prefetch    = 4
)

// Acknowledger amqp.Delivery 的确认操作
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type MailWorker struct {
	mqClient *mq.RabbitMQClient
	mailer   notify.Mailer
}

func NewMailWorker(mqClient *mq.RabbitMQClient, mailer notify.Mailer) *MailWorker {
	return &MailWorker{
		mqClient: mqClient,
		mailer:   mailer,
	}
}

func (w *MailWorker) Start() error {
	if _, err := w.mqClient.DeclareQueue(notify.MailQueueName); err != nil {
		return err
	}
	if err := w.mqClient.Consume(notify.MailQueueName, prefetch, w.HandleDelivery); err != nil {
		return err
	}
	logger.Info("Mail worker started...")
	return nil
}

func (w *MailWorker) HandleDelivery(msg amqp.Delivery) {
	w.handle(msg.Body, msg)
}

// handle 通知是尽力而为的, 发送失败不重新入队, 避免 SMTP 故障时消息反复投递
func (w *MailWorker) handle(body []byte, ack Acknowledger) {
	var mail notify.Mail
	if err := json.Unmarshal(body, &mail); err != nil {
		logger.Error("Failed to unmarshal mail task", zap.Error(err))
		_ = ack.Nack(false, false) // 解析失败,直接抛弃
		return
	}

	if mail.Expired(time.Now()) {
		logger.Info("Mail expired before delivery, dropped", zap.String("to", mail.To), zap.Time("expiresAt", mail.ExpiresAt))
		_ = ack.Ack(false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := w.mailer.Send(ctx, mail); err != nil {
		logger.Warn("OTP email send failed", zap.String("to", mail.To), zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	logger.Debug("邮件已发送", zap.String("to", mail.To))
	_ = ack.Ack(false)
}
