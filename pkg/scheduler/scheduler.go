package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
)

type Sender interface {
	Send(ctx context.Context, response domain.Response) error
}

type Config struct {
	// AllowDuplicatePending lets the same trigger be pending twice in one chat.
	AllowDuplicatePending bool
	// MaxAttempts bounds sends per task. Values below 1 mean a single attempt.
	// Sends that may have reached the chat are never retried.
	MaxAttempts  int
	RetryBackoff time.Duration
	// Workers bounds concurrent sends. Values below 1 mean one send at a time.
	Workers int
	// FlushOnShutdown sends pending tasks immediately on shutdown instead of dropping them.
	FlushOnShutdown bool
}

// Scheduler owns pending delayed deliveries and fires each one from a single timer loop.
// Schedule and Cancel only touch the queue under the mutex and never wait for a send.
type Scheduler struct {
	sender   Sender
	reporter Reporter
	cfg      Config
	now      func() time.Time

	mu      sync.Mutex
	queue   deliveryQueue
	byID    map[string]*item
	pending map[string]string
	seq     uint64
	stopped bool

	wakeCh chan struct{}
	sem    chan struct{}
	wg     sync.WaitGroup
}

func New(sender Sender, reporter Reporter, cfg Config) *Scheduler {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &Scheduler{
		sender:   sender,
		reporter: reporter,
		cfg:      cfg,
		now:      time.Now,
		byID:     make(map[string]*item),
		pending:  make(map[string]string),
		wakeCh:   make(chan struct{}, 1),
		sem:      make(chan struct{}, cfg.Workers),
	}
}

func (s *Scheduler) Name() string { return "delay_scheduler" }

func pendingKey(chatID int64, key string) string {
	return strconv.FormatInt(chatID, 10) + "|" + key
}

// Schedule enqueues req and returns its task id. A zero delay fires on the next loop
// iteration, never inline.
func (s *Scheduler) Schedule(req domain.DeliveryRequest) (string, error) {
	if req.Delay < 0 {
		return "", fmt.Errorf("%w: negative delay %s", domain.ErrMalformedTriggerDefinition, req.Delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return "", domain.ErrSchedulerStopped
	}

	pk := pendingKey(req.ChatID, req.Key)
	if !s.cfg.AllowDuplicatePending {
		if taskID, ok := s.pending[pk]; ok {
			return taskID, domain.ErrDuplicatePending
		}
	}

	enqueuedAt := s.now()
	taskID := domain.NewTaskID(req.ChatID, req.Key, enqueuedAt)
	for _, taken := s.byID[taskID]; taken; _, taken = s.byID[taskID] {
		enqueuedAt = enqueuedAt.Add(time.Nanosecond)
		taskID = domain.NewTaskID(req.ChatID, req.Key, enqueuedAt)
	}

	s.push(domain.ScheduledDelivery{
		TaskID:           taskID,
		ChatID:           req.ChatID,
		ReplyToMessageID: req.ReplyToMessageID,
		Key:              req.Key,
		Payload:          req.Payload,
		EnqueuedAt:       enqueuedAt,
		FireAt:           enqueuedAt.Add(req.Delay),
		State:            domain.TaskStatePending,
	})

	return taskID, nil
}

// push must be called with s.mu held.
func (s *Scheduler) push(d domain.ScheduledDelivery) {
	it := &item{delivery: d, seq: s.seq}
	s.seq++

	heap.Push(&s.queue, it)
	s.byID[d.TaskID] = it
	if pk := pendingKey(d.ChatID, d.Key); !s.cfg.AllowDuplicatePending {
		if _, ok := s.pending[pk]; !ok {
			s.pending[pk] = d.TaskID
		}
	}

	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// forget must be called with s.mu held.
func (s *Scheduler) forget(d domain.ScheduledDelivery) {
	delete(s.byID, d.TaskID)
	pk := pendingKey(d.ChatID, d.Key)
	if s.pending[pk] == d.TaskID {
		delete(s.pending, pk)
	}
}

// Cancel removes a task that has not fired yet. It returns false for unknown or already fired tasks.
func (s *Scheduler) Cancel(taskID string) bool {
	s.mu.Lock()
	it, ok := s.byID[taskID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	heap.Remove(&s.queue, it.index)
	s.forget(it.delivery)
	it.delivery.State = domain.TaskStateCancelled
	d := it.delivery
	s.mu.Unlock()

	s.reporter.Report(context.Background(), EventCancelled, d, nil)
	return true
}

// Pending returns pending tasks for chatID ordered by FireAt. A zero chatID returns all of them.
func (s *Scheduler) Pending(chatID int64) []domain.ScheduledDelivery {
	s.mu.Lock()
	res := make([]domain.ScheduledDelivery, 0, len(s.queue))
	for _, it := range s.queue {
		if chatID == 0 || it.delivery.ChatID == chatID {
			res = append(res, it.delivery)
		}
	}
	s.mu.Unlock()

	sort.Slice(res, func(i, j int) bool { return res[i].FireAt.Before(res[j].FireAt) })
	return res
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Run drives the timer loop until ctx is cancelled, then flushes or drops what is left.
// Due tasks are popped in FireAt order and sent by up to Workers goroutines.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("starting delay scheduler",
		"maxAttempts", s.cfg.MaxAttempts,
		"workers", s.cfg.Workers,
		"allowDuplicatePending", s.cfg.AllowDuplicatePending,
	)
	defer slog.Info("stopped delay scheduler")

	for {
		if ctx.Err() != nil {
			s.shutdown(ctx)
			return nil
		}

		d, wait, due := s.next()
		if due {
			s.dispatch(func() { s.deliver(ctx, d) })
			continue
		}

		var timerC <-chan time.Time
		var timer *time.Timer
		if wait >= 0 {
			timer = time.NewTimer(wait)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
		case <-s.wakeCh:
		case <-timerC:
		}

		if timer != nil {
			timer.Stop()
		}
	}
}

// next pops the head of the queue if it is due. Otherwise it reports how long to wait,
// or -1 when the queue is empty.
func (s *Scheduler) next() (domain.ScheduledDelivery, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return domain.ScheduledDelivery{}, -1, false
	}

	head := s.queue[0]
	if wait := head.delivery.FireAt.Sub(s.now()); wait > 0 {
		return domain.ScheduledDelivery{}, wait, false
	}

	heap.Pop(&s.queue)
	s.forget(head.delivery)

	head.delivery.Attempts++
	head.delivery.State = domain.TaskStateFired
	return head.delivery, 0, true
}

// dispatch runs fn on the send pool, waiting for a free slot.
func (s *Scheduler) dispatch(fn func()) {
	s.sem <- struct{}{}
	s.wg.Add(1)
	go func() {
		defer func() {
			<-s.sem
			s.wg.Done()
		}()
		fn()
	}()
}

func (s *Scheduler) send(ctx context.Context, d domain.ScheduledDelivery) error {
	return s.sender.Send(context.WithoutCancel(ctx), d.Response())
}

func unconfirmed(err error) bool {
	return errors.Is(err, domain.ErrDeliveryUnconfirmed) || errors.Is(err, context.DeadlineExceeded)
}

func (s *Scheduler) deliver(ctx context.Context, d domain.ScheduledDelivery) {
	err := s.send(ctx, d)
	if err == nil {
		s.reporter.Report(ctx, EventFired, d, nil)
		return
	}

	if d.Attempts < s.cfg.MaxAttempts && !unconfirmed(err) {
		if next, ok := s.retry(d); ok {
			s.reporter.Report(ctx, EventRetrying, next, err)
			return
		}
	}

	s.reporter.Report(ctx, EventFailed, d, err)
}

func (s *Scheduler) retry(d domain.ScheduledDelivery) (domain.ScheduledDelivery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return d, false
	}

	d.State = domain.TaskStateRetryPending
	d.FireAt = s.now().Add(s.cfg.RetryBackoff)
	s.push(d)
	return d, true
}

func (s *Scheduler) shutdown(ctx context.Context) {
	// In-flight sends may requeue retries; drain only after they finish.
	s.wg.Wait()

	s.mu.Lock()
	s.stopped = true
	left := make([]domain.ScheduledDelivery, 0, len(s.queue))
	for len(s.queue) > 0 {
		it := heap.Pop(&s.queue).(*item)
		s.forget(it.delivery)
		left = append(left, it.delivery)
	}
	s.mu.Unlock()

	if len(left) == 0 {
		return
	}

	slog.Info("delay scheduler shutting down with pending deliveries", "count", len(left), "flush", s.cfg.FlushOnShutdown)

	for _, d := range left {
		if !s.cfg.FlushOnShutdown {
			s.reporter.Report(ctx, EventDropped, d, nil)
			continue
		}

		d := d
		d.Attempts++
		d.State = domain.TaskStateFired
		s.dispatch(func() {
			if err := s.send(ctx, d); err != nil {
				s.reporter.Report(ctx, EventFailed, d, err)
				return
			}
			s.reporter.Report(ctx, EventFired, d, nil)
		})
	}
	s.wg.Wait()
}
