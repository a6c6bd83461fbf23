package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
	"github.com/custodia-labs/ledgersync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyRetention is the number of task results kept per task.
const historyRetention = 100

// SessionRunner runs one orchestrator session.
type SessionRunner interface {
	Run(ctx context.Context, req SyncRequest) (*domain.SyncResult, error)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithTenant sets the tenant scheduled sessions sync.
func WithTenant(tenantID string) SchedulerOption {
	return func(s *Scheduler) { s.tenantID = tenantID }
}

// WithInitiatedBy sets the initiator label on scheduled sessions.
func WithInitiatedBy(initiatedBy string) SchedulerOption {
	return func(s *Scheduler) { s.initiatedBy = initiatedBy }
}

// WithTickInterval sets how often the scheduler checks for due tasks.
func WithTickInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.tick = d }
}

// Scheduler runs the scheduled sync on a cron schedule.
// It is a pure core service with no external control API.
type Scheduler struct {
	config      domain.SchedulerConfig
	store       driven.SchedulerStore
	runner      SessionRunner
	registry    *EntityRegistry
	checkpoints driven.CheckpointStore

	tenantID    string
	initiatedBy string
	tick        time.Duration
	now         func() time.Time

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	inFlight map[string]bool
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	runner SessionRunner,
	registry *EntityRegistry,
	checkpoints driven.CheckpointStore,
	opts ...SchedulerOption,
) *Scheduler {
	s := &Scheduler{
		config:      config,
		store:       store,
		runner:      runner,
		registry:    registry,
		checkpoints: checkpoints,
		initiatedBy: "scheduler",
		tick:        time.Minute,
		now:         time.Now,
		inFlight:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		logger.Info("Scheduler disabled")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("initialise tasks: %w", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler, waiting for a running sync.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// NextRun returns the next time a cron schedule fires after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: cron %q: %w", domain.ErrInvalidInput, schedule, err)
	}
	return sched.Next(from), nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	taskCfg := s.config.GetTaskConfig(domain.TaskIDScheduledSync)
	if taskCfg.Schedule == "" {
		taskCfg.Schedule = domain.DefaultSyncSchedule
	}
	return s.ensureTask(ctx, domain.TaskIDScheduledSync, "Scheduled Sync", taskCfg)
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	next, err := NextRun(cfg.Schedule, s.now())
	if err != nil {
		return err
	}

	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Schedule: cfg.Schedule,
			Enabled:  cfg.Enabled,
			NextRun:  next,
		}
	} else {
		if task.Schedule != cfg.Schedule {
			task.Schedule = cfg.Schedule
			task.NextRun = next
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Catch up on anything that fell due while we were down.
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		task := tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, &task)
		}
	}
}

// runTask executes a single task in the background.
// A task already in flight is not started twice.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.inFlight[task.ID] {
		s.mu.Unlock()
		return
	}
	s.inFlight[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, task.ID)
			s.mu.Unlock()
		}()
		s.execute(ctx, task)
	}()
}

// execute runs the task and records its state and result.
func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) {
	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: s.now(),
	}

	var err error
	switch task.ID {
	case domain.TaskIDScheduledSync:
		err = s.runScheduledSync(ctx, result)
	default:
		logger.Warn("scheduler: unknown task ID: %s", task.ID)
		return
	}

	result.EndedAt = s.now()
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		task.LastError = err.Error()
		logger.Error("scheduler: %s failed: %v", task.ID, err)
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}

	task.LastRun = result.StartedAt
	if next, nerr := NextRun(task.Schedule, result.EndedAt); nerr == nil {
		task.NextRun = next
	} else {
		logger.Error("scheduler: %v", nerr)
	}

	// Task bookkeeping survives cancellation of the loop context.
	bookCtx := context.WithoutCancel(ctx)
	if saveErr := s.store.SaveTask(bookCtx, task); saveErr != nil {
		logger.Error("scheduler: failed to save task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordResult(bookCtx, result); recordErr != nil {
		logger.Error("scheduler: failed to record result for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(bookCtx, historyRetention); pruneErr != nil {
		logger.Error("scheduler: failed to prune history: %v", pruneErr)
	}
}

// runScheduledSync syncs every entity that is due. When all are due it
// runs a full session; otherwise only the due subset.
func (s *Scheduler) runScheduledSync(ctx context.Context, result *domain.TaskResult) error {
	due, err := s.DueEntities(ctx)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		logger.Info("scheduler: no entities due")
		return nil
	}

	req := SyncRequest{
		Entities:    due,
		InitiatedBy: s.initiatedBy,
		TenantID:    s.tenantID,
		SessionType: domain.SessionTypeScheduled,
		Scope:       domain.SyncScopeIncremental,
	}
	if len(due) == len(s.registry.Types()) {
		req.Scope = domain.SyncScopeFull
	}

	res, err := s.runner.Run(ctx, req)
	if res != nil {
		result.SessionID = res.SessionID
		result.ItemsProcessed = res.TotalRecordsProcessed
	}
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("session %s %s: %d entities failed", res.SessionID, res.Status, len(res.FailedEntities()))
	}
	return nil
}

// DueEntities returns registered entity types whose last successful sync
// is older than their interval, or whose checkpoint has unread pages.
func (s *Scheduler) DueEntities(ctx context.Context) ([]domain.EntityType, error) {
	checkpoints, err := s.checkpoints.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	byType := make(map[domain.EntityType]domain.SyncCheckpoint, len(checkpoints))
	for _, cp := range checkpoints {
		byType[cp.EntityType] = cp
	}

	now := s.now()
	var due []domain.EntityType
	for _, cfg := range s.registry.All() {
		cp, ok := byType[cfg.EntityType]
		if !ok || cp.HasMoreRecords || cp.IsDue(cfg.SyncInterval(), now) {
			due = append(due, cfg.EntityType)
		}
	}
	return due, nil
}
