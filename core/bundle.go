package core

import (
	"log/slog"

	"github.com/plus3/facet/ecs"
)

// Bundle installs the shared engine resources: the Time resource, the
// ThreadPool resource (also used as the scheduler's executor for parallel
// batches) and a FrameLimiter.
type Bundle struct {
	// Threads bounds the pool; zero means GOMAXPROCS.
	Threads int
	// FrameLimit configures the limiter. The zero value limits to
	// DefaultFPS with the Yield strategy.
	FrameLimit FrameRateLimitConfig
	// Logger is handed to the FrameLimiter.
	Logger *slog.Logger
}

// Build implements ecs.Bundle.
func (b Bundle) Build(world *ecs.World) error {
	limiter, err := NewFrameLimiterFromConfig(b.FrameLimit)
	if err != nil {
		return err
	}

	limiter.Logger = b.Logger

	pool := NewThreadPool(b.Threads)
	ecs.Insert(world, NewTime())
	ecs.Insert(world, pool)
	ecs.Insert(world, *limiter)
	world.Scheduler.SetExecutor(pool)
	return nil
}
