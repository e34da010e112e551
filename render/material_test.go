package render_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/facet/render"
	"github.com/stretchr/testify/assert"
)

func TestTriplanarWeights(t *testing.T) {
	w := render.TriplanarWeights(mgl32.Vec3{0, -1, 0}, 4)
	assert.InDelta(t, 0, w.X(), 1e-6)
	assert.InDelta(t, 1, w.Y(), 1e-6)
	assert.InDelta(t, 0, w.Z(), 1e-6)

	diag := mgl32.Vec3{1, 1, 0}.Normalize()
	soft := render.TriplanarWeights(diag, 1)
	assert.InDelta(t, 0.5, soft.X(), 1e-5)
	assert.InDelta(t, 0.5, soft.Y(), 1e-5)

	tilted := mgl32.Vec3{0.8, 0.6, 0}
	sharp := render.TriplanarWeights(tilted, 8)
	blunt := render.TriplanarWeights(tilted, 1)
	assert.Greater(t, sharp.X(), blunt.X(), "sharpness favours the dominant axis")
	assert.InDelta(t, 1, sharp.X()+sharp.Y()+sharp.Z(), 1e-5)

	even := render.TriplanarWeights(mgl32.Vec3{}, 4)
	assert.InDelta(t, 1.0/3, even.Z(), 1e-6)
}

func TestTriplanarParamsDefaults(t *testing.T) {
	var m render.TriplanarMaterial
	scale, sharpness := m.Params()
	assert.Equal(t, float32(render.DefaultTriplanarScale), scale)
	assert.Equal(t, float32(render.DefaultTriplanarSharpness), sharpness)

	yz, xz, xy := render.TriplanarCoords(mgl32.Vec3{2, 4, 6}, 2)
	assert.Equal(t, mgl32.Vec2{3, 2}, yz)
	assert.Equal(t, mgl32.Vec2{1, 3}, xz)
	assert.Equal(t, mgl32.Vec2{1, 2}, xy)
}

func TestTextureOffsetZeroIsIdentity(t *testing.T) {
	u, v := render.TextureOffset{}.Ranges()
	assert.Equal(t, [2]float32{0, 1}, u)
	assert.Equal(t, [2]float32{0, 1}, v)
}

func TestMaterialDefaults(t *testing.T) {
	textures := render.NewAssetStorage[render.Texture]()
	defaults := render.NewMaterialDefaults(&textures)
	assert.Equal(t, 5, textures.Len())

	albedo := textures.Get(defaults.Material.Albedo)
	assert.Equal(t, []byte{128, 128, 128, 255}, albedo.Pixels)
}
