package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingExecutor struct {
	mu        sync.Mutex
	jobs      []*Job
	failTimes int
	generated int
	done      chan struct{}
}

func (e *recordingExecutor) Execute(ctx context.Context, job *Job) (int, error) {
	e.mu.Lock()
	e.jobs = append(e.jobs, job)
	shouldFail := e.failTimes > 0
	if shouldFail {
		e.failTimes--
	}
	e.mu.Unlock()

	if shouldFail {
		return 0, errors.New("generation failed")
	}
	if e.done != nil {
		select {
		case e.done <- struct{}{}:
		default:
		}
	}
	return e.generated, nil
}

func (e *recordingExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.jobs)
}

func startScheduler(t *testing.T, executor JobExecutor, config Config) *Scheduler {
	t.Helper()
	sched := NewScheduler(config, executor, zap.NewNop())
	require.NoError(t, sched.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sched.Stop(ctx)
	})
	return sched
}

func TestScheduler_RunsSubmittedJob(t *testing.T) {
	executor := &recordingExecutor{generated: 4, done: make(chan struct{}, 1)}
	sched := startScheduler(t, executor, DefaultConfig())

	job := NewJob(uuid.New(), JobTypeGenerateExpenses, "2026-08", 0)
	require.NoError(t, sched.SubmitJob(job))

	select {
	case <-executor.done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}

	// Give the worker a beat to finish bookkeeping
	require.Eventually(t, func() bool {
		return job.Status == JobStatusSuccess
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 4, job.Generated)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.CompletedAt)
}

func TestScheduler_RetriesFailedJob(t *testing.T) {
	executor := &recordingExecutor{failTimes: 1, done: make(chan struct{}, 1)}
	config := DefaultConfig()
	config.RetryDelay = time.Millisecond
	sched := startScheduler(t, executor, config)

	job := NewJob(uuid.New(), JobTypeGeneratePayments, "2026-08", 2)
	require.NoError(t, sched.SubmitJob(job))

	select {
	case <-executor.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}

	require.Eventually(t, func() bool {
		return job.Status == JobStatusSuccess
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, job.RetryCount)
	assert.GreaterOrEqual(t, executor.count(), 2)
}

func TestScheduler_SubmitWhenStoppedFails(t *testing.T) {
	sched := NewScheduler(DefaultConfig(), &recordingExecutor{}, zap.NewNop())

	err := sched.SubmitJob(NewJob(uuid.New(), JobTypeGenerateExpenses, "2026-08", 0))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestScheduler_ScheduleMonthlyGeneration(t *testing.T) {
	executor := &recordingExecutor{}
	sched := startScheduler(t, executor, DefaultConfig())

	tenantID := uuid.New()
	require.NoError(t, sched.ScheduleMonthlyGeneration(tenantID, "2026-08"))

	require.Eventually(t, func() bool {
		return executor.count() == 2
	}, time.Second, 5*time.Millisecond)

	executor.mu.Lock()
	defer executor.mu.Unlock()
	types := map[JobType]bool{}
	for _, job := range executor.jobs {
		assert.Equal(t, tenantID, job.TenantID)
		assert.Equal(t, "2026-08", job.Month)
		types[job.JobType] = true
	}
	assert.True(t, types[JobTypeGenerateExpenses])
	assert.True(t, types[JobTypeGeneratePayments])
}

func TestParseMonthlySpec(t *testing.T) {
	schedule, err := parseMonthlySpec("0 6 1 * *")
	require.NoError(t, err)
	assert.Equal(t, monthlySchedule{minute: 0, hour: 6, day: 1}, schedule)

	schedule, err = parseMonthlySpec("30 23 28 * *")
	require.NoError(t, err)
	assert.Equal(t, monthlySchedule{minute: 30, hour: 23, day: 28}, schedule)

	for _, spec := range []string{
		"",
		"0 6 1",
		"0 6 1 2 *",
		"0 6 0 * *",
		"0 6 29 * *",
		"60 6 1 * *",
		"0 24 1 * *",
		"x 6 1 * *",
	} {
		_, err := parseMonthlySpec(spec)
		assert.ErrorIs(t, err, ErrInvalidCronSpec, "spec %q", spec)
	}
}

type staticTenantProvider struct {
	ids []uuid.UUID
}

func (p *staticTenantProvider) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	return p.ids, nil
}

func TestMonthlyTrigger_TriggerGeneration(t *testing.T) {
	executor := &recordingExecutor{}
	sched := startScheduler(t, executor, DefaultConfig())

	provider := &staticTenantProvider{ids: []uuid.UUID{uuid.New(), uuid.New()}}
	trigger, err := NewMonthlyTrigger(DefaultMonthlyTriggerConfig(), sched, provider, zap.NewNop())
	require.NoError(t, err)

	trigger.TriggerGeneration(context.Background(), "2026-08")

	// Two job types per tenant
	require.Eventually(t, func() bool {
		return executor.count() == 4
	}, time.Second, 5*time.Millisecond)
}

func TestNewMonthlyTrigger_RejectsBadSpec(t *testing.T) {
	_, err := NewMonthlyTrigger(MonthlyTriggerConfig{CronSpec: "bad"}, nil, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidCronSpec)
}
