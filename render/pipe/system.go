package pipe

import (
	"log/slog"

	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/render"
	"github.com/plus3/facet/render/gfx"
)

// FrameEncoder is implemented by encoders that need to know where a frame
// starts.
type FrameEncoder interface {
	gfx.Encoder
	BeginFrame()
}

// RenderStats is the resource RenderSystem publishes after every frame.
type RenderStats struct {
	Frames    uint64
	Draws     int
	Triangles int
	Passes    []PassStats
}

// RenderSystem compiles its pipeline on first use and draws it every
// frame. Failures are logged once per pass until the pass recovers.
type RenderSystem struct {
	Pipeline *Pipeline
	Factory  gfx.Factory
	Encoder  gfx.Encoder
	Logger   *slog.Logger

	Stats ecs.Singleton[RenderStats]

	compileFailed bool
	failing       map[string]bool
}

func (s *RenderSystem) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Execute implements ecs.System.
func (s *RenderSystem) Execute(frame *ecs.UpdateFrame) {
	if !s.Pipeline.Compiled() {
		if err := s.Pipeline.Compile(s.Factory, frame.Storage); err != nil {
			if !s.compileFailed {
				s.logger().Error("render pipeline compile failed", "err", err)
				s.compileFailed = true
			}
			return
		}
		s.compileFailed = false
		s.logger().Debug("render pipeline compiled", "passes", len(s.Pipeline.Stats()))
	}

	if fe, ok := s.Encoder.(FrameEncoder); ok {
		fe.BeginFrame()
	}
	_ = s.Pipeline.Draw(s.Encoder, s.Factory)

	if s.failing == nil {
		s.failing = make(map[string]bool)
	}
	stats := s.Stats.Get()
	if stats == nil {
		s.Stats.Set(RenderStats{})
		stats = s.Stats.Get()
	}
	stats.Frames++
	stats.Draws, stats.Triangles = 0, 0
	stats.Passes = s.Pipeline.Stats()
	for _, ps := range stats.Passes {
		stats.Draws += ps.Draws
		stats.Triangles += ps.Triangles

		switch {
		case ps.Err != nil && !s.failing[ps.Name]:
			s.logger().Warn("render pass failed", "pass", ps.Name, "stage", ps.Stage, "err", ps.Err)
			s.failing[ps.Name] = true
		case ps.Err == nil && s.failing[ps.Name]:
			s.logger().Info("render pass recovered", "pass", ps.Name)
			delete(s.failing, ps.Name)
		}
	}
}

// Bundle installs the render resources and systems (see render.Bundle)
// followed by a RenderSystem drawing Pipeline.
type Bundle struct {
	Render   render.Bundle
	Pipeline *Pipeline
	Factory  gfx.Factory
	Encoder  gfx.Encoder
	Logger   *slog.Logger
}

// Build implements ecs.Bundle.
func (b Bundle) Build(world *ecs.World) error {
	if b.Pipeline == nil || b.Factory == nil || b.Encoder == nil {
		return newPipeErr("bundle needs a pipeline, a factory and an encoder")
	}
	if err := b.Render.Build(world); err != nil {
		return err
	}
	ecs.Insert(world, RenderStats{})
	world.Scheduler.Register(&RenderSystem{
		Pipeline: b.Pipeline,
		Factory:  b.Factory,
		Encoder:  b.Encoder,
		Logger:   b.Logger,
	})
	return nil
}
