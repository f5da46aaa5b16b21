package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"go.uber.org/zap"
)

// MailQueueName 签发通知队列
const MailQueueName = "secureprint_mail_queue"

// Dispatcher 分离式发送邮件, 调用方不关心结果. 失败只记录日志和指标
type Dispatcher interface {
	Dispatch(mail Mail)
	// Wait 等待已受理的通知处理完毕, 关闭服务时调用
	Wait()
}

// AsyncDispatcher 在独立 goroutine 中用 Mailer 发送
type AsyncDispatcher struct {
	mailer  Mailer
	timeout time.Duration
	wg      sync.WaitGroup
}

var _ Dispatcher = (*AsyncDispatcher)(nil)

func NewAsyncDispatcher(mailer Mailer, timeout time.Duration) *AsyncDispatcher {
	return &AsyncDispatcher{mailer: mailer, timeout: timeout}
}

func (d *AsyncDispatcher) Dispatch(mail Mail) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// 不继承请求的 ctx, 请求结束后发送仍要继续
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.mailer.Send(ctx, mail); err != nil {
			notificationsTotal.WithLabelValues("async", "failed").Inc()
			logger.Warn("OTP email send failed", zap.String("to", mail.To), zap.Error(err))
			return
		}
		notificationsTotal.WithLabelValues("async", "sent").Inc()
	}()
}

func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}

// Publisher 消息队列发布端, 由 mq.RabbitMQClient 实现. ttl <= 0 表示消息不过期
type Publisher interface {
	Publish(queueName string, body []byte, ttl time.Duration) error
}

// MQDispatcher 把邮件投递到 RabbitMQ, 由 worker.MailWorker 消费发送
type MQDispatcher struct {
	publisher Publisher
	queue     string
}

var _ Dispatcher = (*MQDispatcher)(nil)

func NewMQDispatcher(publisher Publisher, queue string) *MQDispatcher {
	return &MQDispatcher{publisher: publisher, queue: queue}
}

// Dispatch 消息 TTL 取邮件剩余有效期, 链接过期后队列里积压的验证码邮件直接被丢弃
func (d *MQDispatcher) Dispatch(mail Mail) {
	var ttl time.Duration
	if !mail.ExpiresAt.IsZero() {
		ttl = time.Until(mail.ExpiresAt)
		if ttl <= 0 {
			notificationsTotal.WithLabelValues("mq", "expired").Inc()
			logger.Warn("邮件已过期, 不再投递", zap.String("to", mail.To))
			return
		}
	}

	body, err := json.Marshal(mail)
	if err != nil {
		notificationsTotal.WithLabelValues("mq", "failed").Inc()
		logger.Error("序列化邮件消息失败", zap.Error(err))
		return
	}
	if err := d.publisher.Publish(d.queue, body, ttl); err != nil {
		notificationsTotal.WithLabelValues("mq", "failed").Inc()
		logger.Warn("投递邮件消息失败", zap.String("to", mail.To), zap.String("queue", d.queue), zap.Error(err))
		return
	}
	notificationsTotal.WithLabelValues("mq", "queued").Inc()
}

// Wait 发布是同步完成的, 无需等待
func (d *MQDispatcher) Wait() {}
