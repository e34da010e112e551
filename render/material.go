package render

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// TextureOffset remaps texture coordinates: u' = U[0] + u*(U[1]-U[0]),
// and likewise for v. The zero value is treated as the identity range.
type TextureOffset struct {
	U [2]float32
	V [2]float32
}

// IdentityOffset returns the offset that leaves coordinates unchanged.
func IdentityOffset() TextureOffset {
	return TextureOffset{U: [2]float32{0, 1}, V: [2]float32{0, 1}}
}

// Ranges returns the u and v ranges, substituting the identity range for
// the zero value.
func (o TextureOffset) Ranges() (u, v [2]float32) {
	if o == (TextureOffset{}) {
		o = IdentityOffset()
	}
	return o.U, o.V
}

// Material is the classic single-projection surface description.
type Material struct {
	AlphaCutoff float32

	Albedo         TextureHandle
	AlbedoOffset   TextureOffset
	Emission       TextureHandle
	EmissionOffset TextureOffset
	Normal         TextureHandle
	NormalOffset   TextureOffset
	Metallic       TextureHandle
	Roughness      TextureHandle
}

// MaterialDefaults supplies the textures used when a material leaves a
// slot empty. A renderer cannot run without it.
type MaterialDefaults struct {
	Material Material
}

// ErrNoMaterialDefaults is returned by passes that need MaterialDefaults
// when the resource is missing.
var ErrNoMaterialDefaults = errors.New(prefix + "MaterialDefaults resource is missing")

// NewMaterialDefaults stores the fallback textures in textures: mid-grey
// albedo, black emission, a flat normal, no metal and full roughness.
func NewMaterialDefaults(textures *AssetStorage[Texture]) MaterialDefaults {
	return MaterialDefaults{Material: Material{
		AlphaCutoff: 0.01,
		Albedo:      textures.Insert(SolidColor(0.5, 0.5, 0.5, 1)),
		Emission:    textures.Insert(SolidColor(0, 0, 0, 0)),
		Normal:      textures.Insert(SolidColor(0.5, 0.5, 1, 1)),
		Metallic:    textures.Insert(SolidColor(0, 0, 0, 1)),
		Roughness:   textures.Insert(SolidColor(1, 1, 1, 1)),
	}}
}

// TriplanarLayer is what one projection plane samples.
type TriplanarLayer struct {
	Albedo         TextureHandle
	AlbedoOffset   TextureOffset
	Emission       TextureHandle
	EmissionOffset TextureOffset
	Normal         TextureHandle
	NormalOffset   TextureOffset
}

// TriplanarMaterial textures geometry by projecting three layers along the
// world axes and blending them by the surface normal.
type TriplanarMaterial struct {
	YZ, XZ, XY TriplanarLayer
	// Scale is the world size of one texture tile.
	Scale float32
	// Sharpness is the exponent applied to the normal before blending.
	// Higher values narrow the transition between planes.
	Sharpness float32
}

// Default tri-planar blending.
const (
	DefaultTriplanarScale     = 1
	DefaultTriplanarSharpness = 4
)

// NewTriplanarMaterial uses layer on all three planes.
func NewTriplanarMaterial(layer TriplanarLayer) TriplanarMaterial {
	return TriplanarMaterial{
		YZ:        layer,
		XZ:        layer,
		XY:        layer,
		Scale:     DefaultTriplanarScale,
		Sharpness: DefaultTriplanarSharpness,
	}
}

// Params returns Scale and Sharpness with non-positive values replaced by
// the defaults.
func (m *TriplanarMaterial) Params() (scale, sharpness float32) {
	scale, sharpness = m.Scale, m.Sharpness
	if scale <= 0 {
		scale = DefaultTriplanarScale
	}
	if sharpness <= 0 {
		sharpness = DefaultTriplanarSharpness
	}
	return scale, sharpness
}

// TriplanarWeights returns the blend weights of the YZ, XZ and XY planes
// for a surface normal. The weights sum to one. A zero normal weighs the
// planes equally.
func TriplanarWeights(normal mgl32.Vec3, sharpness float32) mgl32.Vec3 {
	w := mgl32.Vec3{
		math32.Pow(math32.Abs(normal.X()), sharpness),
		math32.Pow(math32.Abs(normal.Y()), sharpness),
		math32.Pow(math32.Abs(normal.Z()), sharpness),
	}
	sum := w.X() + w.Y() + w.Z()
	if sum <= 1e-12 {
		return mgl32.Vec3{1.0 / 3, 1.0 / 3, 1.0 / 3}
	}
	return w.Mul(1 / sum)
}

// TriplanarCoords returns the texture coordinates of a world position on
// the YZ, XZ and XY planes.
func TriplanarCoords(pos mgl32.Vec3, scale float32) (yz, xz, xy mgl32.Vec2) {
	p := pos.Mul(1 / scale)
	return mgl32.Vec2{p.Z(), p.Y()}, mgl32.Vec2{p.X(), p.Z()}, mgl32.Vec2{p.X(), p.Y()}
}
