package ebitengfx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/facet/render"
	"github.com/plus3/facet/render/gfx"
	"github.com/plus3/facet/render/gfx/record"
	"github.com/plus3/facet/render/shaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var front = mgl32.Vec3{0, 0, 1}

func triangleMesh(t *testing.T, a, b, c mgl32.Vec3) *render.Mesh {
	t.Helper()
	mesh, err := render.NewMesh([]render.PosNormTex{
		{Position: a, Normal: front},
		{Position: b, Normal: front},
		{Position: c, Normal: front},
	}, nil)
	require.NoError(t, err)
	return mesh
}

func drawCall(t *testing.T, mesh *render.Mesh, proj mgl32.Mat4, state gfx.PipelineState) gfx.DrawCall {
	t.Helper()
	var format render.PosNormTex
	program, err := (&record.Factory{}).CreateProgram(gfx.ProgramDesc{
		Name: "DrawTriplanar",
		VertexBuffers: []gfx.VertexBufferLayout{
			{Attributes: format.Attributes(), Stride: format.Stride()},
		},
		State: state,
	})
	require.NoError(t, err)

	var args gfx.Std140
	args.Mat4(proj).Mat4(mgl32.Ident4()).Mat4(mgl32.Ident4())
	return gfx.DrawCall{
		Program:       program,
		Slice:         gfx.SliceFor(mesh),
		VertexBuffers: []*render.VertexBuffer{&mesh.Buffers[0]},
		Constants: map[string][]float32{
			shaders.VertexArgs:    args.Floats(),
			shaders.TriplanarArgs: {2, 4},
		},
		Globals: map[string][]float32{
			shaders.AmbientColor: {0.25, 0.25, 0.25},
		},
	}
}

func TestTessellateProjectsToScreen(t *testing.T) {
	mesh := triangleMesh(t, mgl32.Vec3{-0.5, -0.5, 0}, mgl32.Vec3{0.5, -0.5, 0}, mgl32.Vec3{0, 0.5, 0})
	tris, err := tessellate(drawCall(t, mesh, mgl32.Ident4(), gfx.PipelineState{}), 100, 100)
	require.NoError(t, err)
	require.Len(t, tris, 1)

	v := tris[0].v
	assert.InDelta(t, 25, v[0].DstX, 1e-4)
	assert.InDelta(t, 75, v[0].DstY, 1e-4)
	assert.InDelta(t, 50, v[2].DstX, 1e-4)
	assert.InDelta(t, 25, v[2].DstY, 1e-4)

	assert.InDelta(t, 0.25, v[0].ColorR, 1e-6, "ambient only")
	assert.InDelta(t, 0, v[0].ColorA, 1e-6, "no YZ weight facing +Z")
	assert.InDelta(t, 0, v[0].Custom3, 1e-6, "no XZ weight facing +Z")
	assert.Equal(t, float32(-0.5), v[0].Custom0, "world position")
}

func TestTessellateCullsBackFaces(t *testing.T) {
	mesh := triangleMesh(t, mgl32.Vec3{-0.5, -0.5, 0}, mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{0.5, -0.5, 0})
	tris, err := tessellate(drawCall(t, mesh, mgl32.Ident4(), gfx.PipelineState{}), 100, 100)
	require.NoError(t, err)
	assert.Empty(t, tris)
}

func TestTessellateDropsTrianglesBehindCamera(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	behind := triangleMesh(t, mgl32.Vec3{-0.5, -0.5, 1}, mgl32.Vec3{0.5, -0.5, 1}, mgl32.Vec3{0, 0.5, 1})
	ahead := triangleMesh(t, mgl32.Vec3{-0.5, -0.5, -2}, mgl32.Vec3{0.5, -0.5, -2}, mgl32.Vec3{0, 0.5, -2})

	tris, err := tessellate(drawCall(t, behind, proj, gfx.PipelineState{}), 100, 100)
	require.NoError(t, err)
	assert.Empty(t, tris)

	tris, err = tessellate(drawCall(t, ahead, proj, gfx.PipelineState{}), 100, 100)
	require.NoError(t, err)
	require.Len(t, tris, 1)
	assert.Less(t, tris[0].depth, float32(1))
}

func TestTessellateRejectsBadIndices(t *testing.T) {
	mesh := triangleMesh(t, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	call := drawCall(t, mesh, mgl32.Ident4(), gfx.PipelineState{})
	call.Slice.Indices = []uint32{0, 1, 7}
	_, err := tessellate(call, 10, 10)
	assert.Error(t, err)
}

func TestLighting(t *testing.T) {
	mesh := triangleMesh(t, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	call := drawCall(t, mesh, mgl32.Ident4(), gfx.PipelineState{})
	call.Constants[shaders.FragmentArgs] = []float32{1, 1, 0, 0}
	call.Constants[shaders.PointLights] = []float32{0, 0, 1, 2, 1, 0, 0, 10}
	call.Constants[shaders.DirectionalLights] = []float32{0, 1, 0, 0, 0, 0, -1, 0}

	l := readLighting(call)
	require.Len(t, l.points, 1)
	require.Len(t, l.dirs, 1)

	got := l.at(mgl32.Vec3{}, front)
	point := render.Light{Kind: render.PointLight, Radius: 10, Smoothness: pointFalloff}
	want := mgl32.Vec3{0.25 + 2*point.Attenuation(1), 0.25 + 1, 0.25}
	assert.InDelta(t, want.X(), got.X(), 1e-5)
	assert.InDelta(t, want.Y(), got.Y(), 1e-5)
	assert.InDelta(t, want.Z(), got.Z(), 1e-5)

	assert.Equal(t, mgl32.Vec3{0.25, 0.25, 0.25}, l.at(mgl32.Vec3{}, front.Mul(-1)), "lights behind the surface")
}

func TestEncoderRecordsTextureOffsets(t *testing.T) {
	mesh := triangleMesh(t, mgl32.Vec3{-0.5, -0.5, 0}, mgl32.Vec3{0.5, -0.5, 0}, mgl32.Vec3{0, 0.5, 0})
	call := drawCall(t, mesh, mgl32.Ident4(), gfx.PipelineState{})
	call.Constants[shaders.OffsetName("albedo_xz")] = []float32{0.5, 1, 0, 0.25}

	b, err := NewEncoder(100, 100).record(call)
	require.NoError(t, err)
	assert.Equal(t, [12]float32{
		0, 1, 0, 1,
		0.5, 1, 0, 0.25,
		0, 1, 0, 1,
	}, b.offsets, "missing offsets cover the whole texture")
}

func TestEncoderRejectsForeignPrograms(t *testing.T) {
	mesh := triangleMesh(t, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	err := NewEncoder(10, 10).Draw(drawCall(t, mesh, mgl32.Ident4(), gfx.PipelineState{}))
	assert.ErrorIs(t, err, ErrForeignProgram)
}

func TestEncoderRecordsBatches(t *testing.T) {
	enc := NewEncoder(100, 100)
	near := triangleMesh(t, mgl32.Vec3{-0.5, -0.5, -0.2}, mgl32.Vec3{0.5, -0.5, -0.2}, mgl32.Vec3{0, 0.5, -0.2})
	far := triangleMesh(t, mgl32.Vec3{-0.5, -0.5, 0.6}, mgl32.Vec3{0.5, -0.5, 0.6}, mgl32.Vec3{0, 0.5, 0.6})

	blended := gfx.PipelineState{Outputs: []gfx.Output{{Name: shaders.Color, Mask: gfx.MaskAll, Blend: &gfx.BlendAlpha}}}
	for _, c := range []struct {
		mesh  *render.Mesh
		state gfx.PipelineState
	}{{near, blended}, {near, gfx.PipelineState{}}, {far, gfx.PipelineState{}}} {
		b, err := enc.record(drawCall(t, c.mesh, mgl32.Ident4(), c.state))
		require.NoError(t, err)
		enc.batches = append(enc.batches, b)
	}
	assert.Equal(t, 3, enc.Triangles())

	order := enc.ordered()
	assert.InDelta(t, 0.6, order[0].depth, 1e-5, "far opaque first")
	assert.InDelta(t, -0.2, order[1].depth, 1e-5)
	assert.True(t, order[2].blended, "blended last")
	assert.Equal(t, float32(2), order[2].scale)

	enc.Clear("", [4]float32{1, 0, 0, 1}, 1)
	require.NotNil(t, enc.clearColor)
	enc.BeginFrame()
	assert.Zero(t, enc.Triangles())
	assert.Nil(t, enc.clearColor)

	enc.Clear("shadow", [4]float32{1, 0, 0, 1}, 1)
	assert.Nil(t, enc.clearColor, "offscreen targets are ignored")
}

func TestEbitenBlend(t *testing.T) {
	state := func(b *gfx.Blend) gfx.PipelineState {
		return gfx.PipelineState{Outputs: []gfx.Output{{Name: shaders.Color, Blend: b}}}
	}
	assert.Equal(t, ebiten.BlendSourceOver, ebitenBlend(gfx.PipelineState{}))
	assert.Equal(t, ebiten.BlendSourceOver, ebitenBlend(state(&gfx.BlendAlpha)), "premultiplied source over")
	assert.Equal(t, ebiten.BlendLighter, ebitenBlend(state(&gfx.BlendAdd)))
	assert.Equal(t, ebiten.BlendCopy, ebitenBlend(state(&gfx.BlendReplace)))
}

func TestCommonSize(t *testing.T) {
	w, h := commonSize([3]*render.Texture{
		{Width: 4, Height: 2},
		nil,
		{Width: 1, Height: 8},
	})
	assert.Equal(t, 4, w)
	assert.Equal(t, 8, h)

	w, h = commonSize([3]*render.Texture{})
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestFactoryUnknownProgram(t *testing.T) {
	_, err := NewFactory().CreateProgram(gfx.ProgramDesc{Name: "DrawPbr"})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, DefaultSources(), "DrawTriplanar")
}
