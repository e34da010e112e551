// Package shaders embeds the shader sources of the built-in passes and
// names the uniform interface they share with backends.
package shaders

import _ "embed"

// BasicVertex transforms position, normal and texture coordinates into
// world and clip space.
//
//go:embed vertex/basic.glsl
var BasicVertex []byte

// TriplanarFragment samples albedo, emission and normal maps on the YZ, XZ
// and XY planes and blends them by the world normal.
//
//go:embed fragment/triplanar.glsl
var TriplanarFragment []byte

// TriplanarKage is the Kage rendition of TriplanarFragment used by the
// ebiten backend. Lighting and blend weights arrive per vertex.
//
//go:embed kage/triplanar.kage
var TriplanarKage []byte

// Uniform blocks and globals.
const (
	VertexArgs        = "VertexArgs"
	FragmentArgs      = "FragmentArgs"
	PointLights       = "PointLights"
	DirectionalLights = "DirectionalLights"
	TriplanarArgs     = "TriplanarArgs"

	AmbientColor   = "ambient_color"
	CameraPosition = "camera_position"

	// Color is the name of the color output.
	Color = "color"
)

// Uniform block sizes in float32s.
const (
	// VertexArgsSize holds proj, view and model matrices.
	VertexArgsSize = 48
	// FragmentArgsSize holds the point and directional light counts.
	FragmentArgsSize = 4
	// PointLightSize holds position, intensity, color and radius.
	PointLightSize = 8
	// DirectionalLightSize holds color and direction, both padded.
	DirectionalLightSize = 8
	// TriplanarArgsSize holds scale and sharpness.
	TriplanarArgsSize = 4
	// TextureOffsetSize holds the u and v ranges of one texture.
	TextureOffsetSize = 4
)

// Light array capacities, matching the GLSL declarations.
const (
	MaxPointLights       = 32
	MaxDirectionalLights = 4
)

// OffsetName returns the name of the constant buffer holding the offsets
// of texture name.
func OffsetName(texture string) string {
	return texture + "_offset"
}
