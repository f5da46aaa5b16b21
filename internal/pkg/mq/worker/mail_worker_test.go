package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAck) Ack(multiple bool) error {
	a.acked = true
	return nil
}

func (a *fakeAck) Nack(multiple, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

type fakeMailer struct {
	sent []notify.Mail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, mail notify.Mail) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

func TestMailWorker_Handle(t *testing.T) {
	body, err := json.Marshal(notify.OTPMail("owner@example.com", "123456", time.Now().Add(5*time.Minute)))
	require.NoError(t, err)

	t.Run("sends and acks", func(t *testing.T) {
		mailer := &fakeMailer{}
		ack := &fakeAck{}
		w := NewMailWorker(nil, mailer)

		w.handle(body, ack)

		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "owner@example.com", mailer.sent[0].To)
	})

	t.Run("send failure drops without requeue", func(t *testing.T) {
		mailer := &fakeMailer{err: errors.New("smtp down")}
		ack := &fakeAck{}
		w := NewMailWorker(nil, mailer)

		w.handle(body, ack)

		assert.False(t, ack.acked)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})

	t.Run("expired mail is acked without sending", func(t *testing.T) {
		expired, err := json.Marshal(notify.OTPMail("owner@example.com", "123456", time.Now().Add(-time.Minute)))
		require.NoError(t, err)
		mailer := &fakeMailer{}
		ack := &fakeAck{}
		w := NewMailWorker(nil, mailer)

		w.handle(expired, ack)

		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
		assert.Empty(t, mailer.sent)
	})

	t.Run("malformed body", func(t *testing.T) {
		mailer := &fakeMailer{}
		ack := &fakeAck{}
		w := NewMailWorker(nil, mailer)

		w.handle([]byte("{not json"), ack)

		assert.True(t, ack.nacked)
		assert.Empty(t, mailer.sent)
	})
}
