package ecs

import (
	"context"
	"reflect"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Parallel       bool
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (s *systemStatsInternal) record(d time.Duration) {
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
	s.minDuration = min(s.minDuration, d)
	s.maxDuration = max(s.maxDuration, d)
}

type scheduledSystem struct {
	system   System
	bindings *Bindings
	stats    *systemStatsInternal
	parallel bool
}

type batch struct {
	systems  []*scheduledSystem
	parallel bool
}

// Scheduler runs systems once per tick in registration order. Systems added
// with RegisterParallel form a batch that runs concurrently on the
// scheduler's Executor; without one the batch runs in order.
type Scheduler struct {
	storage  *Storage
	batches  []*batch
	systems  []*scheduledSystem
	executor Executor
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithExecutor sets the executor used for parallel batches.
func WithExecutor(e Executor) SchedulerOption {
	return func(s *Scheduler) { s.executor = e }
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{storage: storage}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetExecutor replaces the executor used for parallel batches.
func (s *Scheduler) SetExecutor(e Executor) {
	s.executor = e
}

// Storage returns the storage the scheduler drives.
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

func (s *Scheduler) schedule(system System, parallel bool) *scheduledSystem {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	entry := &scheduledSystem{
		system:   system,
		bindings: Bind(system, s.storage),
		parallel: parallel,
		stats: &systemStatsInternal{
			name:        t.Name(),
			minDuration: time.Duration(1<<63 - 1),
		},
	}
	s.systems = append(s.systems, entry)
	return entry
}

// Register appends a system and binds its Query and Singleton fields.
func (s *Scheduler) Register(system System) {
	s.batches = append(s.batches, &batch{systems: []*scheduledSystem{s.schedule(system, false)}})
}

// RegisterParallel appends a batch of systems that may run concurrently.
// Systems in one batch must not write data another member reads or
// writes; the scheduler does not check.
func (s *Scheduler) RegisterParallel(systems ...System) {
	b := &batch{parallel: len(systems) > 1}
	for _, system := range systems {
		b.systems = append(b.systems, s.schedule(system, b.parallel))
	}
	s.batches = append(s.batches, b)
}

func (s *Scheduler) run(entry *scheduledSystem, frame *UpdateFrame) {
	entry.bindings.Refresh()
	start := time.Now()
	entry.system.Execute(frame)
	entry.stats.record(time.Since(start))
}

// Tick executes every system once with the given delta time and flushes
// queued commands. It returns the executor's error, if any; commands are
// flushed regardless.
func (s *Scheduler) Tick(ctx context.Context, dt float64) error {
	frame := newUpdateFrame(ctx, dt, s.storage)
	defer frame.Commands.Flush(s.storage)

	for _, b := range s.batches {
		if !b.parallel || s.executor == nil {
			for _, entry := range b.systems {
				s.run(entry, frame)
			}
			continue
		}

		forks := make([]*UpdateFrame, len(b.systems))
		tasks := make([]func(context.Context) error, len(b.systems))
		for i, entry := range b.systems {
			forks[i] = frame.fork()
			tasks[i] = func(context.Context) error {
				s.run(entry, forks[i])
				return nil
			}
		}
		err := s.executor.Run(ctx, tasks...)
		for _, fork := range forks {
			frame.Commands.Append(fork.Commands)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Once executes all registered systems once with the given delta time.
func (s *Scheduler) Once(dt float64) {
	_ = s.Tick(context.Background(), dt)
}

// Run ticks at the given interval until ctx is cancelled or a tick fails.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := s.Tick(ctx, dt); err != nil {
				return err
			}
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for i, entry := range s.systems {
		internal := entry.stats
		var avg time.Duration
		if internal.executionCount > 0 {
			avg = internal.totalDuration / time.Duration(internal.executionCount)
		}
		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			Parallel:       entry.parallel,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avg,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		stats.TotalExecutions += internal.executionCount
	}
	return stats
}
