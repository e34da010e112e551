package main

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/facet/core/transform"
	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/render"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Orbit moves the active camera around Target in eased segments of Step
// radians.
type Orbit struct {
	Target   mgl32.Vec3
	Radius   float32
	Height   float32
	Step     float32
	Duration float32

	angle float32
	tween *gween.Tween
}

// Angle returns the current orbit angle in radians.
func (o *Orbit) Angle() float32 { return o.angle }

// Position returns the camera position at the current angle.
func (o *Orbit) Position() mgl32.Vec3 {
	sin, cos := math32.Sincos(o.angle)
	return o.Target.Add(mgl32.Vec3{sin * o.Radius, o.Height, cos * o.Radius})
}

// orbitBundle inserts o and schedules OrbitSystem.
func orbitBundle(o Orbit) ecs.Bundle {
	return ecs.BundleFunc(func(w *ecs.World) error {
		ecs.Insert(w, o)
		w.Scheduler.Register(&OrbitSystem{})
		return nil
	})
}

// OrbitSystem advances the Orbit resource and places the active camera.
type OrbitSystem struct {
	Orbit   ecs.Singleton[Orbit]
	Active  ecs.Singleton[render.ActiveCamera]
	Cameras ecs.View[struct{ *transform.Transform }]
}

// Execute implements ecs.System.
func (s *OrbitSystem) Execute(frame *ecs.UpdateFrame) {
	o, active := s.Orbit.Get(), s.Active.Get()
	if o == nil || active == nil {
		return
	}
	if o.tween == nil {
		o.tween = gween.New(o.angle, o.angle+o.Step, o.Duration, ease.InOutSine)
	}
	angle, done := o.tween.Update(float32(frame.DeltaTime))
	o.angle = angle
	if done {
		o.tween = nil
	}

	cam := s.Cameras.GetRef(active.Entity)
	if cam == nil {
		return
	}
	cam.Transform.SetPosition(o.Position())
	cam.Transform.LookAt(o.Target, mgl32.Vec3{0, 1, 0})
}
