package gfx_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/facet/render/gfx"
	"github.com/stretchr/testify/assert"
)

func TestStd140Packing(t *testing.T) {
	var b gfx.Std140
	b.Float(1).Vec3(mgl32.Vec3{2, 3, 4}).Float(5).Vec2(mgl32.Vec2{6, 7}).Align()

	assert.Equal(t, []float32{
		1, 0, 0, 0,
		2, 3, 4, 5,
		6, 7, 0, 0,
	}, b.Floats())

	b.Reset()
	b.Mat3(mgl32.Ident3())
	assert.Equal(t, 12, b.Len())
	assert.Equal(t, []float32{1, 0, 0, 0}, b.Floats()[:4])

	b.Reset()
	b.Float(9).Mat4(mgl32.Ident4())
	assert.Equal(t, 20, b.Len())
}

func TestDepthMode(t *testing.T) {
	assert.False(t, gfx.DepthNone.Test())
	assert.True(t, gfx.LessEqualWrite.Write())
	assert.True(t, gfx.LessEqualWrite.Inclusive())
	assert.False(t, gfx.LessEqualTest.Write())
	assert.Equal(t, "less_equal_write", gfx.LessEqualWrite.String())
}

func TestPipelineStateBlended(t *testing.T) {
	s := gfx.PipelineState{Outputs: []gfx.Output{{Name: "color", Mask: gfx.MaskAll}}}
	assert.False(t, s.Blended())

	blend := gfx.BlendAlpha
	s.Outputs = append(s.Outputs, gfx.Output{Name: "glow", Mask: gfx.MaskRed, Blend: &blend})
	assert.True(t, s.Blended())
}
