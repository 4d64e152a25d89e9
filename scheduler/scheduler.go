// Package scheduler runs named host tasks (profile snapshots, opponent
// resets) on wall-clock intervals, outside the simulation tick.
package scheduler

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TaskFn is a scheduled task body.
type TaskFn func()

// TaskInfo describes a registered periodic task.
type TaskInfo struct {
	Name     string        `json:"name"`
	Interval time.Duration `json:"interval"`
	Runs     int64         `json:"runs"`
	Panics   int64         `json:"panics"`
}

type task struct {
	interval time.Duration
	runs     atomic.Int64
	panics   atomic.Int64
	stopCh   chan struct{}
}

// Scheduler owns periodic and one-shot tasks. A panicking task is logged
// and keeps its schedule.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]*task
	timers map[string]*time.Timer
	logger *zap.Logger
	stopCh chan struct{}
}

func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		tasks:  make(map[string]*task),
		timers: make(map[string]*time.Timer),
		stopCh: make(chan struct{}),
		logger: logger,
	}
}

func (s *Scheduler) run(name string, t *task, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			t.panics.Add(1)
			s.logger.Error("scheduler task panicked", zap.String("task", name), zap.Any("recover", r))
		}
	}()
	fn()
	t.runs.Add(1)
}

// AddTicker runs fn every interval until removed or stopped. A task with the
// same name is replaced. Non-positive intervals are ignored.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) bool {
	if interval <= 0 || fn == nil {
		s.logger.Debug("scheduler task disabled", zap.String("task", name))
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stopCh:
		return false
	default:
	}

	if old, ok := s.tasks[name]; ok {
		close(old.stopCh)
	}
	t := &task{interval: interval, stopCh: make(chan struct{})}
	s.tasks[name] = t

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run(name, t, fn)
			case <-t.stopCh:
				return
			case <-s.stopCh:
				return
			}
		}
	}()
	s.logger.Info("scheduler task registered", zap.String("task", name), zap.Duration("interval", interval))
	return true
}

// AddDelay runs fn once after delay, replacing a pending delay of the same name.
func (s *Scheduler) AddDelay(name string, delay time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[name]; ok {
		old.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.run(name, &task{}, fn)
		s.mu.Lock()
		if s.timers[name] == timer {
			delete(s.timers, name)
		}
		s.mu.Unlock()
	})
	s.timers[name] = timer
}

// Remove cancels a periodic or delayed task.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[name]; ok {
		close(t.stopCh)
		delete(s.tasks, name)
	}
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
}

// Stop cancels everything. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stopCh:
		return
	default:
		close(s.stopCh)
	}
	for name, t := range s.timers {
		t.Stop()
		delete(s.timers, name)
	}
}

// Tasks lists the periodic tasks sorted by name.
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskInfo, 0, len(s.tasks))
	for name, t := range s.tasks {
		out = append(out, TaskInfo{Name: name, Interval: t.interval, Runs: t.runs.Load(), Panics: t.panics.Load()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
