package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Mail
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, mail Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

type recordingPublisher struct {
	calls int
	queue string
	body  []byte
	ttl   time.Duration
	err   error
}

func (p *recordingPublisher) Publish(queueName string, body []byte, ttl time.Duration) error {
	p.calls++
	p.queue = queueName
	p.body = body
	p.ttl = ttl
	return p.err
}

func TestAsyncDispatcher_SendsInBackground(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewAsyncDispatcher(mailer, time.Second)

	d.Dispatch(OTPMail("owner@example.com", "123456", time.Now()))
	d.Wait()

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "owner@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, "123456")
}

func TestAsyncDispatcher_FailureIsSwallowed(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	d := NewAsyncDispatcher(mailer, time.Second)

	assert.NotPanics(t, func() {
		d.Dispatch(OTPMail("owner@example.com", "123456", time.Now()))
		d.Wait()
	})
	assert.Empty(t, mailer.sent)
}

func TestMQDispatcher_PublishesJSON(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewMQDispatcher(pub, MailQueueName)

	d.Dispatch(LinkMail("shop@example.com", "http://localhost:5173/shop/abc", time.Now().Add(5*time.Minute)))

	assert.Equal(t, MailQueueName, pub.queue)
	assert.Greater(t, pub.ttl, 4*time.Minute)
	assert.LessOrEqual(t, pub.ttl, 5*time.Minute)
	var got Mail
	require.NoError(t, json.Unmarshal(pub.body, &got))
	assert.Equal(t, "shop@example.com", got.To)
	assert.True(t, got.HTML)
	assert.Contains(t, got.Body, "http://localhost:5173/shop/abc")
}

func TestMQDispatcher_SkipsExpiredMail(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewMQDispatcher(pub, MailQueueName)

	d.Dispatch(OTPMail("owner@example.com", "123456", time.Now().Add(-time.Second)))

	assert.Zero(t, pub.calls)
}

func TestMQDispatcher_NoExpiryMeansNoTTL(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewMQDispatcher(pub, MailQueueName)

	d.Dispatch(Mail{To: "a@example.com", Subject: "hi", Body: "plain"})

	assert.Equal(t, 1, pub.calls)
	assert.Zero(t, pub.ttl)
}

func TestMail_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, Mail{}.Expired(now))
	assert.False(t, Mail{ExpiresAt: now.Add(time.Second)}.Expired(now))
	assert.True(t, Mail{ExpiresAt: now}.Expired(now))
}

func TestMQDispatcher_PublishFailureIsSwallowed(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	d := NewMQDispatcher(pub, MailQueueName)

	assert.NotPanics(t, func() {
		d.Dispatch(OTPMail("owner@example.com", "123456", time.Now().Add(time.Minute)))
	})
	assert.Equal(t, 1, pub.calls)
}

func TestSMTPMailer_NotConfigured(t *testing.T) {
	m := NewSMTPMailer(smtpConfig("", ""))
	err := m.Send(context.Background(), OTPMail("a@example.com", "123456", time.Now()))
	assert.ErrorIs(t, err, ErrMailerNotConfigured)
}

func TestTemplates(t *testing.T) {
	exp := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	otp := OTPMail("a@example.com", "654321", exp)
	assert.Equal(t, "Your SecurePrint OTP", otp.Subject)
	assert.False(t, otp.HTML)
	assert.Equal(t, "Your OTP is: 654321\nExpires: 2025-01-02 03:04:05 UTC", otp.Body)
	assert.Equal(t, exp, otp.ExpiresAt)

	link := LinkMail("b@example.com", "http://x/shop/1", exp)
	assert.Equal(t, "SecurePrint - Document Link", link.Subject)
	assert.True(t, link.HTML)
	assert.Contains(t, link.Body, `<a href="http://x/shop/1">http://x/shop/1</a>`)
	assert.Contains(t, link.Body, "2025-01-02 03:04:05 UTC")
	assert.NotContains(t, link.Body, "OTP")
}

func smtpConfig(host, user string) config.SMTPConfig {
	return config.SMTPConfig{Host: host, Port: 465, Username: user}
}
