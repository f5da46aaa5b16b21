package mq

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RabbitMQClient 一条连接加一个 channel, 发布和消费共用
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // 请求 goroutine 并发发布时串行化 channel 操作
}

func NewRabbitMQClient(amqpURL string) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	c := &RabbitMQClient{conn: conn, channel: ch}
	c.watchClose()
	logger.Info("Connected to RabbitMQ successfully!")
	return c, nil
}

// watchClose 连接被服务端断开时记录日志, 正常 Close 时通道直接关闭不会收到错误
func (c *RabbitMQClient) watchClose() {
	closed := c.conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if amqpErr, ok := <-closed; ok && amqpErr != nil {
			logger.Error("RabbitMQ connection lost",
				zap.Int("code", amqpErr.Code), zap.String("reason", amqpErr.Reason))
		}
	}()
}

// DeclareQueue 声明持久化队列, 重复声明是幂等的
func (c *RabbitMQClient) DeclareQueue(queueName string) (amqp.Queue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
}

// Publish 投递持久化的 JSON 消息. ttl > 0 时消息在队列中超过 ttl 未被消费即被丢弃
func (c *RabbitMQClient) Publish(queueName string, body []byte, ttl time.Duration) error {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}
	if ttl > 0 {
		msg.Expiration = strconv.FormatInt(ttl.Milliseconds(), 10)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.channel.Publish("", queueName, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queueName, err)
	}
	return nil
}

// Consume 手动确认模式消费, prefetch 限制同时未确认的消息数
func (c *RabbitMQClient) Consume(queueName string, prefetch int, handler func(msg amqp.Delivery)) error {
	c.mu.Lock()
	if prefetch > 0 {
		if err := c.channel.Qos(prefetch, 0, false); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set qos: %w", err)
		}
	}
	msgs, err := c.channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			handler(msg)
		}
		logger.Info("Consumer stopped", zap.String("queue", queueName))
	}()

	logger.Info("Waiting for messages", zap.String("queue", queueName), zap.Int("prefetch", prefetch))
	return nil
}

func (c *RabbitMQClient) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	logger.Info("RabbitMQ connection closed.")
}
