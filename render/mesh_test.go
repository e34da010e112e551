package render_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/facet/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryAttributes(t *testing.T) {
	attrs, err := render.QueryAttributes(render.PosNormTangTex{}, render.Position, render.Normal, render.TexCoord)
	require.NoError(t, err)
	assert.Equal(t, []render.AttributeFormat{
		{Attribute: render.Position, Offset: 0},
		{Attribute: render.Normal, Offset: 12},
		{Attribute: render.TexCoord, Offset: 40},
	}, attrs)

	_, err = render.QueryAttributes(render.PosColor{}, render.Position, render.Normal)
	assert.ErrorIs(t, err, render.ErrMissingAttributes)
}

func TestMeshBuffer(t *testing.T) {
	mesh, err := render.NewMesh([]render.PosNormTex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{0, 0, 1}},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: mgl32.Vec3{0, 0, 1}},
		{Position: mgl32.Vec3{0, 1, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0, 1}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, mesh.VertexCount())
	assert.Equal(t, 3, mesh.ElementCount())

	attrs, err := render.QueryAttributes(render.PosNormTex{}, render.Position, render.TexCoord)
	require.NoError(t, err)
	buf := mesh.Buffer(attrs)
	require.NotNil(t, buf)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, buf.Vec3(1, attrs[0]))
	assert.Equal(t, mgl32.Vec2{0, 1}, buf.Vec2(2, attrs[1]))

	tangents, err := render.QueryAttributes(render.PosNormTangTex{}, render.Tangent)
	require.NoError(t, err)
	assert.Nil(t, mesh.Buffer(tangents))
	assert.Nil(t, (*render.Mesh)(nil).Buffer(attrs))
}

func TestNewMeshRejectsBadIndices(t *testing.T) {
	_, err := render.NewMesh([]render.PosTex{{}}, []uint32{0, 0, 1})
	assert.Error(t, err)
}

func TestShapesFaceOutward(t *testing.T) {
	attrs, err := render.QueryAttributes(render.PosNormTex{}, render.Position, render.Normal)
	require.NoError(t, err)

	for name, mesh := range map[string]*render.Mesh{
		"cube":   render.Cube(0.5),
		"plane":  render.Plane(2),
		"sphere": render.Sphere(1, 8, 12),
	} {
		t.Run(name, func(t *testing.T) {
			buf := mesh.Buffer(attrs)
			require.NotNil(t, buf)
			require.Zero(t, len(mesh.Indices)%3)

			for i := 0; i < len(mesh.Indices); i += 3 {
				a := buf.Vec3(int(mesh.Indices[i]), attrs[0])
				b := buf.Vec3(int(mesh.Indices[i+1]), attrs[0])
				c := buf.Vec3(int(mesh.Indices[i+2]), attrs[0])
				cross := b.Sub(a).Cross(c.Sub(a))
				if cross.Len() < 1e-6 {
					continue // sphere poles
				}
				n := buf.Vec3(int(mesh.Indices[i]), attrs[1])
				assert.Positive(t, cross.Dot(n), "triangle %d", i/3)
			}
		})
	}
}

func TestCubeCounts(t *testing.T) {
	cube := render.Cube(1)
	assert.Equal(t, 24, cube.VertexCount())
	assert.Equal(t, 36, cube.ElementCount())
}
