package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantProvider lists the tenants to generate for
type TenantProvider interface {
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// MonthlyTriggerConfig holds configuration for the monthly trigger
type MonthlyTriggerConfig struct {
	// CronSpec is a restricted cron expression "minute hour day * *"
	// describing when in the month to run
	CronSpec string
	// CheckInterval is how often to check whether it is time to run
	CheckInterval time.Duration
}

// DefaultMonthlyTriggerConfig returns the default trigger configuration:
// the 1st of the month at 06:00
func DefaultMonthlyTriggerConfig() MonthlyTriggerConfig {
	return MonthlyTriggerConfig{
		CronSpec:      "0 6 1 * *",
		CheckInterval: time.Minute,
	}
}

// monthlySchedule is the parsed form of the cron spec
type monthlySchedule struct {
	minute int
	hour   int
	day    int
}

// parseMonthlySpec parses the restricted "minute hour day * *" form.
// Month and weekday fields must be wildcards; generation is monthly by
// definition.
func parseMonthlySpec(spec string) (monthlySchedule, error) {
	fields := strings.Fields(spec)
	if len(fields) != 5 {
		return monthlySchedule{}, fmt.Errorf("%w: expected 5 fields, got %d", ErrInvalidCronSpec, len(fields))
	}
	if fields[3] != "*" || fields[4] != "*" {
		return monthlySchedule{}, fmt.Errorf("%w: month and weekday must be '*'", ErrInvalidCronSpec)
	}

	minute, err := strconv.Atoi(fields[0])
	if err != nil || minute < 0 || minute > 59 {
		return monthlySchedule{}, fmt.Errorf("%w: bad minute %q", ErrInvalidCronSpec, fields[0])
	}
	hour, err := strconv.Atoi(fields[1])
	if err != nil || hour < 0 || hour > 23 {
		return monthlySchedule{}, fmt.Errorf("%w: bad hour %q", ErrInvalidCronSpec, fields[1])
	}
	day, err := strconv.Atoi(fields[2])
	if err != nil || day < 1 || day > 28 {
		return monthlySchedule{}, fmt.Errorf("%w: bad day %q", ErrInvalidCronSpec, fields[2])
	}

	return monthlySchedule{minute: minute, hour: hour, day: day}, nil
}

// MonthlyTrigger fires monthly generation for every tenant once per
// calendar month
type MonthlyTrigger struct {
	config         MonthlyTriggerConfig
	schedule       monthlySchedule
	scheduler      *Scheduler
	tenantProvider TenantProvider
	logger         *zap.Logger

	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.Mutex
	isRunning    bool
	lastRunMonth string
}

// NewMonthlyTrigger creates a monthly trigger
func NewMonthlyTrigger(
	config MonthlyTriggerConfig,
	sched *Scheduler,
	tenantProvider TenantProvider,
	logger *zap.Logger,
) (*MonthlyTrigger, error) {
	if config.CronSpec == "" {
		config.CronSpec = DefaultMonthlyTriggerConfig().CronSpec
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultMonthlyTriggerConfig().CheckInterval
	}

	schedule, err := parseMonthlySpec(config.CronSpec)
	if err != nil {
		return nil, err
	}

	return &MonthlyTrigger{
		config:         config,
		schedule:       schedule,
		scheduler:      sched,
		tenantProvider: tenantProvider,
		logger:         logger,
	}, nil
}

// Start starts the trigger loop
func (t *MonthlyTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Monthly trigger started",
		zap.String("cron_spec", t.config.CronSpec),
		zap.Duration("check_interval", t.config.CheckInterval),
	)
	return nil
}

// Stop stops the trigger
func (t *MonthlyTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Monthly trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *MonthlyTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkAndTrigger(ctx)
		}
	}
}

func (t *MonthlyTrigger) checkAndTrigger(ctx context.Context) {
	now := time.Now()
	currentMonth := now.Format("2006-01")

	t.mu.Lock()
	alreadyRan := t.lastRunMonth == currentMonth
	t.mu.Unlock()
	if alreadyRan {
		return
	}

	if now.Day() != t.schedule.day || now.Hour() != t.schedule.hour || now.Minute() != t.schedule.minute {
		return
	}

	t.mu.Lock()
	t.lastRunMonth = currentMonth
	t.mu.Unlock()

	t.logger.Info("Triggering monthly generation", zap.String("month", currentMonth))
	t.TriggerGeneration(ctx, currentMonth)
}

// TriggerGeneration submits generation jobs for every tenant. Exposed so
// generation can also be invoked manually for a given month.
func (t *MonthlyTrigger) TriggerGeneration(ctx context.Context, month string) {
	tenantIDs, err := t.tenantProvider.ListTenantIDs(ctx)
	if err != nil {
		t.logger.Error("Failed to list tenants for monthly generation", zap.Error(err))
		return
	}

	t.logger.Info("Scheduling monthly generation",
		zap.String("month", month),
		zap.Int("tenant_count", len(tenantIDs)),
	)

	for _, tenantID := range tenantIDs {
		if err := t.scheduler.ScheduleMonthlyGeneration(tenantID, month); err != nil {
			t.logger.Error("Failed to schedule generation for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		}
	}
}
