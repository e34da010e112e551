// Package app runs a World: it installs the engine bundles, drives the
// frame loop and keeps the Time resource current.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plus3/facet/core"
	"github.com/plus3/facet/core/transform"
	"github.com/plus3/facet/ecs"
)

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the logger of the application and of the bundles it
// installs itself.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) { a.Logger = logger }
}

// WithBundles installs bundles after core.Bundle and before
// transform.Bundle, so their systems run before transforms propagate.
func WithBundles(bundles ...ecs.Bundle) Option {
	return func(a *Application) { a.early = append(a.early, bundles...) }
}

// WithClock replaces time.Now as the source of frame times.
func WithClock(now func() time.Time) Option {
	return func(a *Application) { a.now = now }
}

// Application owns a World plus a second scheduler for fixed-step
// systems. Each Step runs the fixed systems as many times as the Time
// accumulator allows, then every frame system once.
type Application struct {
	World *ecs.World
	// Fixed runs on the World's storage at Time.FixedTime intervals.
	Fixed  *ecs.Scheduler
	Logger *slog.Logger

	config Config
	early  []ecs.Bundle
	now    func() time.Time
	last   time.Time
	frames uint64
}

// New creates an application with core.Bundle, the WithBundles bundles
// and transform.Bundle installed, in that order.
func New(cfg Config, opts ...Option) (*Application, error) {
	a := &Application{
		World:  ecs.NewWorld(),
		Logger: slog.Default(),
		config: cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Fixed = ecs.NewScheduler(a.World.Storage)

	if err := a.AddBundle(core.Bundle{Threads: cfg.Threads, FrameLimit: cfg.FrameLimit, Logger: a.Logger}); err != nil {
		return nil, err
	}
	if pool := ecs.Resource[core.ThreadPool](a.World); pool != nil {
		a.Fixed.SetExecutor(*pool)
	}
	for _, b := range a.early {
		if err := a.AddBundle(b); err != nil {
			return nil, err
		}
	}
	if err := a.AddBundle(transform.Bundle{Logger: a.Logger}); err != nil {
		return nil, err
	}
	return a, nil
}

// Config returns the configuration the application was created with.
func (a *Application) Config() Config { return a.config }

// AddBundle installs b into the World.
func (a *Application) AddBundle(b ecs.Bundle) error {
	if err := a.World.AddBundle(b); err != nil {
		return err
	}
	a.Logger.Debug("bundle installed", "bundle", fmt.Sprintf("%T", b))
	return nil
}

// Time returns the Time resource.
func (a *Application) Time() *core.Time {
	return ecs.Resource[core.Time](a.World)
}

// Step advances Time by the wall time since the previous step (zero on the
// first), runs the due fixed steps, at most MaxFixedSteps of them, and then
// one frame.
func (a *Application) Step(ctx context.Context) error {
	now := a.now()
	var elapsed time.Duration
	if !a.last.IsZero() {
		elapsed = now.Sub(a.last)
	}
	a.last = now

	clock := a.Time()
	clock.SetDeltaTime(elapsed)
	limit := a.config.MaxFixedSteps
	if limit <= 0 {
		limit = DefaultMaxFixedSteps
	}
	for steps := 0; ; steps++ {
		if steps == limit {
			if dropped := clock.DropFixedBacklog(); dropped > 0 {
				a.Logger.Warn("fixed update backlog dropped", "steps", limit, "dropped", dropped)
			}
			break
		}
		if !clock.StepFixedUpdate() {
			break
		}
		if err := a.Fixed.Tick(ctx, float64(clock.FixedSeconds())); err != nil {
			return err
		}
	}
	if err := a.World.Scheduler.Tick(ctx, float64(clock.DeltaSeconds())); err != nil {
		return err
	}
	clock.IncrementFrameNumber()
	a.frames++
	return nil
}

func (a *Application) threads() int {
	if pool := ecs.Resource[core.ThreadPool](a.World); pool != nil {
		return pool.Size()
	}
	return 1
}

// Run steps until ctx is cancelled or a step fails, pacing frames with the
// FrameLimiter resource. Cancellation is not an error.
func (a *Application) Run(ctx context.Context) error {
	limiter := ecs.Resource[core.FrameLimiter](a.World)
	if limiter == nil {
		limiter = core.DefaultFrameLimiter()
	}

	a.Logger.Info("application started",
		"title", a.config.Title,
		"fps", limiter.FPS(),
		"limit", limiter.Strategy().Kind,
		"threads", a.threads())
	start := a.frames

	limiter.Start()
	for {
		select {
		case <-ctx.Done():
			a.Logger.Info("application stopped", "frames", a.frames-start)
			return nil
		default:
		}
		if err := a.Step(ctx); err != nil {
			if ctx.Err() != nil {
				a.Logger.Info("application stopped", "frames", a.frames-start)
				return nil
			}
			a.Logger.Error("frame failed", "frame", a.frames, "err", err)
			return err
		}
		limiter.Wait()
	}
}
