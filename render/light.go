package render

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightKind selects how a Light's fields are interpreted.
type LightKind int

const (
	PointLight LightKind = iota
	DirectionalLight
	SpotLight
	SunLight
)

func (k LightKind) String() string {
	switch k {
	case PointLight:
		return "point"
	case DirectionalLight:
		return "directional"
	case SpotLight:
		return "spot"
	case SunLight:
		return "sun"
	}
	return "unknown"
}

// Light is a light source component. Point and spot lights are positioned
// by the entity's GlobalTransform.
type Light struct {
	Kind  LightKind
	Color mgl32.Vec3
	// Intensity applies to point and spot lights.
	Intensity float32
	// Radius bounds point lights; Range bounds spot lights.
	Radius float32
	Range  float32
	// Smoothness shapes the falloff near the radius or range.
	Smoothness float32
	// Direction applies to directional, spot and sun lights.
	Direction mgl32.Vec3
	// Angle is the spot cone half-angle, or the sun's angular radius, in
	// radians.
	Angle float32
}

// NewPointLight returns a point light.
func NewPointLight(color mgl32.Vec3, intensity, radius float32) Light {
	return Light{Kind: PointLight, Color: color, Intensity: intensity, Radius: radius, Smoothness: 4}
}

// NewDirectionalLight returns a light with parallel rays along dir.
func NewDirectionalLight(color, dir mgl32.Vec3) Light {
	return Light{Kind: DirectionalLight, Color: color, Direction: dir.Normalize()}
}

// NewSpotLight returns a cone light.
func NewSpotLight(color, dir mgl32.Vec3, angle, intensity, rng float32) Light {
	return Light{
		Kind:       SpotLight,
		Color:      color,
		Direction:  dir.Normalize(),
		Angle:      angle,
		Intensity:  intensity,
		Range:      rng,
		Smoothness: 4,
	}
}

// NewSunLight returns a directional light with an angular radius.
func NewSunLight(color, dir mgl32.Vec3, angularRadius float32) Light {
	return Light{Kind: SunLight, Color: color, Direction: dir.Normalize(), Angle: angularRadius}
}

// Attenuation returns the point or spot falloff at distance d, in [0, 1].
// Other kinds do not attenuate.
func (l *Light) Attenuation(d float32) float32 {
	var limit float32
	switch l.Kind {
	case PointLight:
		limit = l.Radius
	case SpotLight:
		limit = l.Range
	default:
		return 1
	}
	if limit <= 0 || d >= limit {
		return 0
	}
	s := max(l.Smoothness, 1)
	f := 1 - math32.Pow(d/limit, s)
	return f * f / (1 + d*d)
}
