package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of background work. Run is retried on error up to the
// queue's retry budget.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// TaskQueueConfig holds configuration for the task queue
type TaskQueueConfig struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultTaskQueueConfig returns default configuration
func DefaultTaskQueueConfig() TaskQueueConfig {
	return TaskQueueConfig{
		QueueSize:    256,
		Workers:      2,
		MaxRetries:   3,
		RetryBackoff: 2 * time.Second,
	}
}

// TaskQueue runs fire-and-forget work on a bounded in-process queue.
// Enqueue never blocks the caller: when the queue is full the task is
// dropped and counted, never queued at the caller's expense. Failed runs
// are retried with exponential backoff and then abandoned with an error log.
type TaskQueue struct {
	config TaskQueueConfig
	logger *zap.Logger
	tasks  chan Task

	cancel context.CancelFunc
	wg     sync.WaitGroup

	enqueued  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewTaskQueue creates a task queue
func NewTaskQueue(config TaskQueueConfig, logger *zap.Logger) *TaskQueue {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultTaskQueueConfig().QueueSize
	}
	if config.Workers <= 0 {
		config.Workers = DefaultTaskQueueConfig().Workers
	}
	return &TaskQueue{
		config: config,
		logger: logger,
		tasks:  make(chan Task, config.QueueSize),
	}
}

// Start launches the worker pool
func (q *TaskQueue) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}

	q.logger.Info("task queue started",
		zap.Int("workers", q.config.Workers),
		zap.Int("queue_size", q.config.QueueSize),
	)
	return nil
}

// Stop drains the workers. Tasks already running finish; queued tasks
// that no worker picked up before cancellation are abandoned.
func (q *TaskQueue) Stop(ctx context.Context) error {
	if q.cancel != nil {
		q.cancel()
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("task queue stopped",
			zap.Int64("completed", q.completed.Load()),
			zap.Int64("failed", q.failed.Load()),
			zap.Int64("dropped", q.dropped.Load()),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue submits a task without blocking. Returns false when the queue
// is full and the task was dropped.
func (q *TaskQueue) Enqueue(task Task) bool {
	select {
	case q.tasks <- task:
		q.enqueued.Add(1)
		return true
	default:
		q.dropped.Add(1)
		q.logger.Error("task queue full, dropping task",
			zap.String("task", task.Name),
			zap.Int64("dropped_total", q.dropped.Load()),
		)
		return false
	}
}

// Stats returns enqueued, completed, failed and dropped counters
func (q *TaskQueue) Stats() (enqueued, completed, failed, dropped int64) {
	return q.enqueued.Load(), q.completed.Load(), q.failed.Load(), q.dropped.Load()
}

func (q *TaskQueue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-q.tasks:
			q.runWithRetry(ctx, task)
		}
	}
}

func (q *TaskQueue) runWithRetry(ctx context.Context, task Task) {
	var err error
	for attempt := 0; attempt <= q.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(q.config.RetryBackoff << (attempt - 1)):
			}
		}
		if err = q.run(ctx, task); err == nil {
			q.completed.Add(1)
			return
		}
		q.logger.Warn("task attempt failed",
			zap.String("task", task.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	q.failed.Add(1)
	q.logger.Error("task abandoned after retries",
		zap.String("task", task.Name),
		zap.Int("max_retries", q.config.MaxRetries),
		zap.Error(err),
	)
}

// run invokes the task, converting a panic into a logged failure
func (q *TaskQueue) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
			q.logger.Error("task panicked",
				zap.String("task", task.Name),
				zap.Any("panic", r),
			)
		}
	}()
	return task.Run(ctx)
}
