// Package scheduler runs named tasks on fixed intervals, with on-demand
// triggers. Each task runs in its own goroutine and never overlaps itself.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of periodic work
type Task struct {
	Name     string
	Interval time.Duration
	// Timeout bounds one run. Zero means Interval.
	Timeout time.Duration
	// RunOnStart runs the task once right after Start
	RunOnStart bool
	Run        func(ctx context.Context) error
}

// TaskStatus is the last known state of a task
type TaskStatus struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Running   bool          `json:"running"`
	Runs      int           `json:"runs"`
	Failures  int           `json:"failures"`
	LastRunAt *time.Time    `json:"last_run_at,omitempty"`
	LastError string        `json:"last_error,omitempty"`
	Duration  time.Duration `json:"last_duration"`
}

type taskState struct {
	task    Task
	trigger chan chan error

	mu     sync.Mutex
	status TaskStatus
}

// Scheduler owns a set of tasks
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	tasks   map[string]*taskState
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an empty scheduler
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger: logger.Named("scheduler"),
		tasks:  make(map[string]*taskState),
	}
}

// Add registers a task. Tasks must be added before Start.
func (s *Scheduler) Add(task Task) error {
	if task.Name == "" || task.Run == nil || task.Interval <= 0 {
		return ErrInvalidTask
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSchedulerRunning
	}
	if _, ok := s.tasks[task.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, task.Name)
	}
	if task.Timeout <= 0 {
		task.Timeout = task.Interval
	}
	s.tasks[task.Name] = &taskState{
		task:    task,
		trigger: make(chan chan error),
		status:  TaskStatus{Name: task.Name, Interval: task.Interval},
	}
	return nil
}

// Start launches one loop per task
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)

	for _, ts := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, ts)
	}
	s.logger.Info("Scheduler started", zap.Int("tasks", len(s.tasks)))
	return nil
}

// Stop cancels every loop and waits for running tasks
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// Trigger runs a task now and waits for its result. A trigger that arrives
// while the task is running waits for that run to finish first.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	ts, ok := s.tasks[name]
	running := s.running
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	if !running {
		return ErrSchedulerNotRunning
	}

	result := make(chan error, 1)
	select {
	case ts.trigger <- result:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the state of every task sorted by name
func (s *Scheduler) Status() []TaskStatus {
	s.mu.Lock()
	states := make([]*taskState, 0, len(s.tasks))
	for _, ts := range s.tasks {
		states = append(states, ts)
	}
	s.mu.Unlock()

	out := make([]TaskStatus, 0, len(states))
	for _, ts := range states {
		ts.mu.Lock()
		out = append(out, ts.status)
		ts.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) loop(ctx context.Context, ts *taskState) {
	defer s.wg.Done()
	ticker := time.NewTicker(ts.task.Interval)
	defer ticker.Stop()

	if ts.task.RunOnStart {
		_ = s.execute(ctx, ts)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.execute(ctx, ts)
		case result := <-ts.trigger:
			result <- s.execute(ctx, ts)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, ts *taskState) (err error) {
	runCtx, cancel := context.WithTimeout(ctx, ts.task.Timeout)
	defer cancel()

	start := time.Now()
	ts.mu.Lock()
	ts.status.Running = true
	ts.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", ts.task.Name, r)
		}
		elapsed := time.Since(start)
		ts.mu.Lock()
		ts.status.Running = false
		ts.status.Runs++
		ts.status.LastRunAt = &start
		ts.status.Duration = elapsed
		ts.status.LastError = ""
		if err != nil {
			ts.status.Failures++
			ts.status.LastError = err.Error()
		}
		ts.mu.Unlock()

		if err != nil {
			s.logger.Error("Task failed",
				zap.String("task", ts.task.Name),
				zap.Duration("duration", elapsed),
				zap.Error(err),
			)
			return
		}
		s.logger.Debug("Task finished", zap.String("task", ts.task.Name), zap.Duration("duration", elapsed))
	}()

	return ts.task.Run(runCtx)
}
