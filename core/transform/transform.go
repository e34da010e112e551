// Package transform provides local and global transform components and the
// system that propagates them down the parent hierarchy.
package transform

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/facet/ecs"
)

// Transform is an entity's placement relative to its parent, or to the world
// for roots. Build one with New; the zero value collapses everything to the
// origin.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// New returns the identity transform.
func New() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// At returns the identity transform moved to (x, y, z).
func At(x, y, z float32) Transform {
	t := New()
	t.Translation = mgl32.Vec3{x, y, z}
	return t
}

func (t *Transform) rotation() mgl32.Quat {
	if t.Rotation.W == 0 && t.Rotation.V == (mgl32.Vec3{}) {
		return mgl32.QuatIdent()
	}
	return t.Rotation
}

// Matrix returns translation * rotation * scale.
func (t *Transform) Matrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	m = m.Mul4(t.rotation().Mat4())
	return m.Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// SetPosition sets the translation.
func (t *Transform) SetPosition(p mgl32.Vec3) *Transform {
	t.Translation = p
	return t
}

// SetScale sets a uniform scale.
func (t *Transform) SetScale(s float32) *Transform {
	t.Scale = mgl32.Vec3{s, s, s}
	return t
}

// Move translates along parent-space axes.
func (t *Transform) Move(v mgl32.Vec3) *Transform {
	t.Translation = t.Translation.Add(v)
	return t
}

// MoveLocal translates along the transform's own axes.
func (t *Transform) MoveLocal(v mgl32.Vec3) *Transform {
	return t.Move(t.rotation().Rotate(v))
}

// MoveForward moves along the local -Z axis.
func (t *Transform) MoveForward(amount float32) *Transform {
	return t.MoveLocal(mgl32.Vec3{0, 0, -amount})
}

// MoveRight moves along the local +X axis.
func (t *Transform) MoveRight(amount float32) *Transform {
	return t.MoveLocal(mgl32.Vec3{amount, 0, 0})
}

// MoveUp moves along the local +Y axis.
func (t *Transform) MoveUp(amount float32) *Transform {
	return t.MoveLocal(mgl32.Vec3{0, amount, 0})
}

// Rotate applies a rotation of angle radians around a parent-space axis.
func (t *Transform) Rotate(axis mgl32.Vec3, angle float32) *Transform {
	t.Rotation = mgl32.QuatRotate(angle, axis.Normalize()).Mul(t.rotation()).Normalize()
	return t
}

// RotateLocal applies a rotation of angle radians around a local axis.
func (t *Transform) RotateLocal(axis mgl32.Vec3, angle float32) *Transform {
	t.Rotation = t.rotation().Mul(mgl32.QuatRotate(angle, axis.Normalize())).Normalize()
	return t
}

// Pitch rotates around the local X axis.
func (t *Transform) Pitch(angle float32) *Transform {
	return t.RotateLocal(mgl32.Vec3{1, 0, 0}, angle)
}

// Yaw rotates around the local Y axis.
func (t *Transform) Yaw(angle float32) *Transform {
	return t.RotateLocal(mgl32.Vec3{0, 1, 0}, angle)
}

// Roll rotates around the local Z axis.
func (t *Transform) Roll(angle float32) *Transform {
	return t.RotateLocal(mgl32.Vec3{0, 0, 1}, angle)
}

// SetRotationEuler sets the rotation from XYZ Euler angles in radians.
func (t *Transform) SetRotationEuler(x, y, z float32) *Transform {
	t.Rotation = mgl32.AnglesToQuat(x, y, z, mgl32.XYZ)
	return t
}

// LookAt orients the transform so that -Z points at target.
func (t *Transform) LookAt(target, up mgl32.Vec3) *Transform {
	view := mgl32.LookAtV(t.Translation, target, up)
	t.Rotation = mgl32.Mat4ToQuat(view.Inv()).Normalize()
	return t
}

// Forward returns the local -Z axis in parent space.
func (t *Transform) Forward() mgl32.Vec3 {
	return t.rotation().Rotate(mgl32.Vec3{0, 0, -1})
}

// Right returns the local +X axis in parent space.
func (t *Transform) Right() mgl32.Vec3 {
	return t.rotation().Rotate(mgl32.Vec3{1, 0, 0})
}

// Up returns the local +Y axis in parent space.
func (t *Transform) Up() mgl32.Vec3 {
	return t.rotation().Rotate(mgl32.Vec3{0, 1, 0})
}

// GlobalTransform is the world matrix computed by TransformSystem.
type GlobalTransform struct {
	M mgl32.Mat4
}

// Identity returns the identity global transform.
func Identity() GlobalTransform {
	return GlobalTransform{M: mgl32.Ident4()}
}

// Position returns the world-space translation.
func (g *GlobalTransform) Position() mgl32.Vec3 {
	return g.M.Col(3).Vec3()
}

// Inverse returns the inverse world matrix (the view matrix of a camera).
func (g *GlobalTransform) Inverse() mgl32.Mat4 {
	return g.M.Inv()
}

// Normal returns the matrix that transforms normals to world space.
func (g *GlobalTransform) Normal() mgl32.Mat3 {
	return g.M.Mat3().Inv().Transpose()
}

// Parent attaches an entity under another. Transforms of children are
// relative to the parent's global transform.
type Parent struct {
	Entity *ecs.EntityRef
}
