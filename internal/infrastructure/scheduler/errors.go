package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	// ErrSchedulerRunning is returned when adding tasks after Start
	ErrSchedulerRunning = errors.New("scheduler is already running")
	// ErrUnknownTask is returned for task names that were never added
	ErrUnknownTask = errors.New("unknown task")
	// ErrDuplicateTask is returned when a task name is added twice
	ErrDuplicateTask = errors.New("task already registered")
	// ErrInvalidTask is returned for tasks without a name, function or interval
	ErrInvalidTask = errors.New("task needs a name, a function and a positive interval")
)
