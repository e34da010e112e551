package pipe_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/render"
	"github.com/plus3/facet/render/gfx"
	"github.com/plus3/facet/render/gfx/record"
	"github.com/plus3/facet/render/pipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quadAttrs, _ = render.QueryAttributes(render.PosNormTex{}, render.Position, render.TexCoord)

type quadPass struct {
	Meshes ecs.Singleton[render.AssetStorage[render.Mesh]]
	Items  ecs.Query[struct{ Mesh *render.MeshHandle }]

	fail error
}

func (p *quadPass) Compile(ne pipe.NewEffect) (*pipe.Effect, error) {
	return ne.Simple([]byte("vs"), []byte("fs")).
		WithRawVertexBuffer(quadAttrs, render.PosNormTex{}.Stride(), 0).
		WithRawConstantBuffer("Args", 4, 1).
		WithTexture("albedo").
		WithOutput("color", gfx.LessEqualWrite).
		Build()
}

func (p *quadPass) Apply(enc gfx.Encoder, effect *pipe.Effect, _ gfx.Factory) error {
	meshes := p.Meshes.Get()
	for item := range p.Items.Values() {
		mesh := meshes.Get(*item.Mesh)
		effect.AddVertexBuffer(mesh.Buffer(quadAttrs))
		if err := effect.Update("Args", []float32{1, 2}); err != nil {
			return err
		}
		if err := effect.Draw(gfx.SliceFor(mesh), enc); err != nil {
			return err
		}
		effect.Clear()
	}
	return p.fail
}

func TestEffectBuilderDescribesProgram(t *testing.T) {
	factory := &record.Factory{}
	effect, err := pipe.NewEffectFor(factory, "probe").Simple([]byte("vs"), []byte("fs")).
		WithRawVertexBuffer(quadAttrs, 32, 0).
		WithRawConstantBuffer("Lights", 8, 4).
		WithRawGlobal("ambient_color", 3).
		WithTexture("albedo").
		WithBlendedOutput("color", gfx.MaskAll, gfx.BlendAlpha, gfx.LessEqualTest).
		Build()
	require.NoError(t, err)
	require.Len(t, factory.Programs, 1)

	desc := effect.Program().Desc()
	assert.Equal(t, "probe", desc.Name)
	assert.Equal(t, []gfx.ConstantBufferDesc{{Name: "Lights", Size: 32}}, desc.ConstantBuffers)
	assert.Equal(t, gfx.LessEqualTest, desc.State.Depth)
	assert.True(t, desc.State.Blended())
	assert.Equal(t, []string{"albedo"}, desc.Textures)
}

func TestEffectBuildErrors(t *testing.T) {
	factory := &record.Factory{}
	_, err := pipe.NewEffectFor(factory, "mute").Simple(nil, nil).Build()
	assert.Error(t, err, "no output")

	boom := errors.New("boom")
	factory.Fail = boom
	_, err = pipe.NewEffectFor(factory, "x").Simple(nil, nil).WithOutput("color", gfx.DepthNone).Build()
	assert.ErrorIs(t, err, boom)
}

func TestEffectValidatesBindings(t *testing.T) {
	effect, err := (&quadPass{}).Compile(pipe.NewEffectFor(&record.Factory{}, "quad"))
	require.NoError(t, err)

	assert.ErrorIs(t, effect.Update("Nope", nil), pipe.ErrUndeclared)
	assert.ErrorIs(t, effect.Update("Args", make([]float32, 5)), pipe.ErrBufferSize)
	assert.ErrorIs(t, effect.UpdateGlobal("ambient_color", nil), pipe.ErrUndeclared)
	assert.ErrorIs(t, effect.BindTexture("normal", render.SolidColor(0, 0, 0, 1)), pipe.ErrUndeclared)
	assert.NoError(t, effect.BindTexture("albedo", render.SolidColor(1, 1, 1, 1)))

	enc := &record.Encoder{}
	assert.ErrorIs(t, effect.Draw(gfx.Slice{}, enc), pipe.ErrVertexBuffers)
}

func TestEffectDrawSnapshotsData(t *testing.T) {
	effect, err := (&quadPass{}).Compile(pipe.NewEffectFor(&record.Factory{}, "quad"))
	require.NoError(t, err)

	cube := render.Cube(1)
	enc := &record.Encoder{}
	effect.AddVertexBuffer(cube.Buffer(quadAttrs))
	require.NoError(t, effect.Update("Args", []float32{1}))
	require.NoError(t, effect.Draw(gfx.SliceFor(cube), enc))
	require.NoError(t, effect.Update("Args", []float32{2}))

	require.Len(t, enc.Draws, 1)
	assert.Equal(t, []float32{1}, enc.Draws[0].Constants["Args"])
	assert.Equal(t, 12, enc.Triangles())
}

func newRenderWorld(t *testing.T, pass pipe.Pass, logger *slog.Logger) (*ecs.World, *record.Encoder) {
	t.Helper()
	world := ecs.NewWorld()
	enc := &record.Encoder{}
	pipeline := pipe.NewPipeline(
		pipe.NewStage("").ClearTarget([4]float32{0, 0, 0, 1}, 1).WithPass(pass),
	)
	require.NoError(t, world.AddBundle(pipe.Bundle{
		Pipeline: pipeline,
		Factory:  &record.Factory{},
		Encoder:  enc,
		Logger:   logger,
	}))
	return world, enc
}

func TestRenderSystemDraws(t *testing.T) {
	world, enc := newRenderWorld(t, &quadPass{}, nil)

	meshes := ecs.Resource[render.AssetStorage[render.Mesh]](world)
	h := meshes.Insert(render.Cube(1))
	world.Storage.Spawn(h)
	world.Storage.Spawn(h)

	world.Scheduler.Once(0)

	assert.Len(t, enc.Clears, 1)
	assert.Len(t, enc.Draws, 2)

	stats := ecs.Resource[pipe.RenderStats](world)
	require.NotNil(t, stats)
	assert.Equal(t, uint64(1), stats.Frames)
	assert.Equal(t, 2, stats.Draws)
	assert.Equal(t, 24, stats.Triangles)
	require.Len(t, stats.Passes, 1)
	assert.Equal(t, "quadPass", stats.Passes[0].Name)
}

func TestRenderSystemLogsFailuresOnce(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	pass := &quadPass{fail: errors.New("device lost")}
	world, _ := newRenderWorld(t, pass, logger)

	world.Scheduler.Once(0)
	world.Scheduler.Once(0)
	assert.Equal(t, 1, strings.Count(logs.String(), "render pass failed"))

	pass.fail = nil
	world.Scheduler.Once(0)
	assert.Contains(t, logs.String(), "render pass recovered")

	stats := ecs.Resource[pipe.RenderStats](world)
	assert.NoError(t, stats.Passes[0].Err)
}

func TestPipelineDrawBeforeCompile(t *testing.T) {
	p := pipe.NewPipeline(pipe.NewStage("").WithPass(&quadPass{}))
	assert.Error(t, p.Draw(&record.Encoder{}, &record.Factory{}))
	assert.False(t, p.Compiled())
}
