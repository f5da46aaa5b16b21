package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/config"
	"gopkg.in/gomail.v2"
)

var ErrMailerNotConfigured = errors.New("smtp mailer not configured")

// Mail 一封待发送的邮件. HTML 为 true 时 Body 按 text/html 发送
type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	HTML    bool   `json:"html"`
	// ExpiresAt 非零时, 过了该时刻邮件内容已无意义, 不再发送
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Expired 邮件在 now 时刻是否已经过期
func (m Mail) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && !now.Before(m.ExpiresAt)
}

// Mailer 同步发送邮件
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer 端口 465 时 gomail 自动使用隐式 TLS
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	m := &SMTPMailer{cfg: cfg}
	if cfg.Host != "" && cfg.Username != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, mail Mail) error {
	if m.dialer == nil {
		return ErrMailerNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", mail.To)
	msg.SetHeader("Subject", mail.Subject)
	if mail.HTML {
		msg.SetBody("text/html", mail.Body)
	} else {
		msg.SetBody("text/plain", mail.Body)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", mail.To, err)
	}
	return nil
}
