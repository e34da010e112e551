package pipe

import (
	"errors"
	"fmt"
	"time"

	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/render/gfx"
)

// Stage draws its passes into one target, after optionally clearing it.
type Stage struct {
	Target     string
	Clear      bool
	ClearColor [4]float32
	ClearDepth float32
	Passes     []Pass
}

// NewStage starts a stage drawing into target. The empty target is the
// main surface.
func NewStage(target string) *Stage {
	return &Stage{Target: target, ClearDepth: 1}
}

// ClearTarget clears color and depth before the passes run.
func (s *Stage) ClearTarget(color [4]float32, depth float32) *Stage {
	s.Clear = true
	s.ClearColor = color
	s.ClearDepth = depth
	return s
}

// WithPass appends a pass.
func (s *Stage) WithPass(p Pass) *Stage {
	s.Passes = append(s.Passes, p)
	return s
}

// PassStats is what a pipeline measured for one pass in the last frame.
type PassStats struct {
	Name      string
	Stage     int
	Draws     int
	Triangles int
	Duration  time.Duration
	Err       error
}

type compiledPass struct {
	pass     Pass
	effect   *Effect
	bindings *ecs.Bindings
	stats    PassStats
}

// Pipeline is an ordered list of stages.
type Pipeline struct {
	stages   []*Stage
	compiled [][]*compiledPass
}

// NewPipeline creates a pipeline; stages run in the order given.
func NewPipeline(stages ...*Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Compiled reports whether Compile has succeeded.
func (p *Pipeline) Compiled() bool {
	return p.compiled != nil
}

// Compile binds every pass to storage and compiles its effect.
func (p *Pipeline) Compile(factory gfx.Factory, storage *ecs.Storage) error {
	compiled := make([][]*compiledPass, len(p.stages))
	for i, stage := range p.stages {
		for _, pass := range stage.Passes {
			name := PassName(pass)
			bindings := ecs.Bind(pass, storage)
			effect, err := pass.Compile(NewEffectFor(factory, name))
			if err != nil {
				return fmt.Errorf(prefix+"compile %s: %w", name, err)
			}
			compiled[i] = append(compiled[i], &compiledPass{
				pass:     pass,
				effect:   effect,
				bindings: bindings,
				stats:    PassStats{Name: name, Stage: i},
			})
		}
	}
	p.compiled = compiled
	return nil
}

// countingEncoder forwards to an encoder and counts what passes through.
type countingEncoder struct {
	gfx.Encoder
	draws     int
	triangles int
}

func (c *countingEncoder) Draw(call gfx.DrawCall) error {
	if err := c.Encoder.Draw(call); err != nil {
		return err
	}
	c.draws++
	c.triangles += int(call.Slice.Count()*max(call.Slice.Instances, 1)) / 3
	return nil
}

// Draw runs every stage into enc. A failing pass does not stop the others;
// the joined errors are returned.
func (p *Pipeline) Draw(enc gfx.Encoder, factory gfx.Factory) error {
	if p.compiled == nil {
		return newPipeErr("pipeline not compiled")
	}

	var errs []error
	for i, stage := range p.stages {
		if stage.Clear {
			enc.Clear(stage.Target, stage.ClearColor, stage.ClearDepth)
		}
		for _, cp := range p.compiled[i] {
			counter := &countingEncoder{Encoder: enc}
			cp.bindings.Refresh()
			cp.effect.Clear()

			start := time.Now()
			err := cp.pass.Apply(counter, cp.effect, factory)
			cp.stats.Duration = time.Since(start)
			cp.stats.Draws = counter.draws
			cp.stats.Triangles = counter.triangles
			cp.stats.Err = err
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", cp.stats.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Stats returns the per-pass statistics of the last Draw, in run order.
func (p *Pipeline) Stats() []PassStats {
	var out []PassStats
	for _, stage := range p.compiled {
		for _, cp := range stage {
			out = append(out, cp.stats)
		}
	}
	return out
}
