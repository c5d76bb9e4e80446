package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingSender struct {
	mu    sync.Mutex
	mails []*Mail
	fail  bool
	block chan struct{}
}

func (r *recordingSender) Send(_ context.Context, m *Mail) error {
	if r.block != nil {
		<-r.block
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail {
		return errors.New("smtp down")
	}

	r.mails = append(r.mails, m)
	return nil
}

func (r *recordingSender) sent() []*Mail {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*Mail(nil), r.mails...)
}

func TestMailQueueDelivers(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := &recordingSender{}
	q := NewMailQueue(s, 4, 2)
	q.StartWorkerPool()

	for _, to := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, q.Enqueue(&Mail{To: to, Subject: "hi"}))
	}

	q.Stop()

	assert.Len(t, s.sent(), 3)
}

func TestMailQueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := &recordingSender{block: make(chan struct{})}
	q := NewMailQueue(s, 1, 1)
	q.StartWorkerPool()

	// First mail is picked up by the worker and blocks there, second fills the buffer
	require.NoError(t, q.Enqueue(&Mail{To: "a@example.com"}))
	require.Eventually(t, func() bool { return q.queued.Load() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(&Mail{To: "b@example.com"}))

	assert.ErrorIs(t, q.Enqueue(&Mail{To: "c@example.com"}), ErrQueueFull)

	close(s.block)
	q.Stop()

	assert.Len(t, s.sent(), 2)
}

func TestMailQueueStopped(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewMailQueue(&recordingSender{}, 1, 1)
	q.StartWorkerPool()
	q.Stop()
	q.Stop()

	assert.ErrorIs(t, q.Enqueue(&Mail{To: "a@example.com"}), ErrQueueStopped)
}

func TestMailQueueSurvivesSendErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := &recordingSender{fail: true}
	q := NewMailQueue(s, 2, 1)
	q.StartWorkerPool()

	require.NoError(t, q.Enqueue(&Mail{To: "a@example.com"}))
	require.NoError(t, q.Enqueue(&Mail{To: "b@example.com"}))
	q.Stop()

	assert.Empty(t, s.sent())
}

func TestVerificationMail(t *testing.T) {
	m, err := VerificationMail("a@example.com", "<b>Bob</b>", "http://localhost/auth/verifyemail?token=abc")
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", m.To)
	assert.Equal(t, "Email Verification", m.Subject)
	assert.Contains(t, m.HTML, "&lt;b&gt;Bob&lt;/b&gt;")
	assert.Contains(t, m.HTML, `href="http://localhost/auth/verifyemail?token=abc"`)
}

func TestResetMail(t *testing.T) {
	m, err := ResetMail("a@example.com", "Bob", "http://localhost/auth/resetpassword/abc", "30m0s")
	require.NoError(t, err)

	assert.Equal(t, "Reset Password", m.Subject)
	assert.Contains(t, m.HTML, "Dear Bob")
	assert.Contains(t, m.HTML, "30m0s")
	assert.Contains(t, m.HTML, "http://localhost/auth/resetpassword/abc")
}

func TestNewSMTPSender(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{From: "noreply@example.com"})
	assert.Error(t, err)

	_, err = NewSMTPSender(SMTPConfig{Host: "smtp.example.com"})
	assert.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"})
	require.NoError(t, err)

	err = s.Send(context.Background(), &Mail{To: "noreply@example.com"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Send(ctx, &Mail{To: "a@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

type countingDeleter struct {
	calls atomic.Int32
}

func (c *countingDeleter) DeleteStale(context.Context, time.Time) (int64, error) {
	c.calls.Add(1)
	return 1, nil
}

func TestTokenCleanupStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := &countingDeleter{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		TokenCleanup(ctx, 5*time.Millisecond, d)
		close(done)
	}()

	require.Eventually(t, func() bool { return d.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
