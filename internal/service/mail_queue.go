package service

import (
	"bitwise74/auth-api/pkg/metrics"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrQueueFull    = errors.New("mail queue full")
	ErrQueueStopped = errors.New("mail queue stopped")
)

const sendTimeout = 30 * time.Second

// MailQueue hands mails to a fixed pool of workers so requests never wait on
// the SMTP relay
type MailQueue struct {
	sender  Sender
	jobs    chan *Mail
	workers int
	queued  atomic.Int32

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewMailQueue(s Sender, size, workers int) *MailQueue {
	if size <= 0 {
		size = 64
	}

	if workers <= 0 {
		workers = 1
	}

	zap.L().Debug("Initializing mail queue", zap.Int("size", size), zap.Int("workers", workers))

	return &MailQueue{
		sender:  s,
		jobs:    make(chan *Mail, size),
		workers: workers,
	}
}

func (q *MailQueue) StartWorkerPool() {
	for range q.workers {
		q.wg.Add(1)
		go q.worker()
	}
}

func (q *MailQueue) worker() {
	defer q.wg.Done()

	for m := range q.jobs {
		q.queued.Add(-1)

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := q.sender.Send(ctx, m)
		cancel()

		if err != nil {
			metrics.MailsSent.WithLabelValues("failed").Inc()
			zap.L().Error("Failed to send mail",
				zap.String("to", m.To),
				zap.String("subject", m.Subject),
				zap.Error(err))
			continue
		}

		metrics.MailsSent.WithLabelValues("sent").Inc()
		zap.L().Debug("Mail sent", zap.String("to", m.To), zap.String("subject", m.Subject))
	}
}

// Enqueue never blocks. It fails with ErrQueueFull when every slot is taken
func (q *MailQueue) Enqueue(m *Mail) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		return ErrQueueStopped
	}

	select {
	case q.jobs <- m:
		q.queued.Add(1)
		zap.L().Debug("New mail enqueued", zap.Int32("enqueued", q.queued.Load()), zap.String("to", m.To))
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new mails, lets the workers drain what is queued and waits
// for them to exit
func (q *MailQueue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}
