package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/facet/ecs"
)

// Camera holds a projection. Its view comes from the GlobalTransform of
// the same entity.
type Camera struct {
	Proj mgl32.Mat4
}

// Perspective returns a camera with a right-handed perspective projection.
// fovy is in radians.
func Perspective(aspect, fovy, near, far float32) Camera {
	return Camera{Proj: mgl32.Perspective(fovy, aspect, near, far)}
}

// Orthographic returns a camera with an orthographic projection.
func Orthographic(left, right, bottom, top, near, far float32) Camera {
	return Camera{Proj: mgl32.Ortho(left, right, bottom, top, near, far)}
}

// ActiveCamera selects the camera entity to render from. Without it, or
// when its entity is gone, the first camera found is used.
type ActiveCamera struct {
	Entity *ecs.EntityRef
}

// AmbientColor is the ambient light resource.
type AmbientColor struct {
	Color mgl32.Vec3
}
