// Package scene builds the tri-planar demo scene shared by the benchmark
// and the viewer.
package scene

import (
	"errors"
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/facet/core/transform"
	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/render"
)

// ErrNoRender is returned when the render bundle was not installed first.
var ErrNoRender = errors.New("scene: render bundle not installed")

// Spin rotates an entity about a local axis.
type Spin struct {
	Axis mgl32.Vec3
	// Rate is in radians per second.
	Rate float32
}

// SpinSystem applies Spin to Transform.
type SpinSystem struct {
	Spinning ecs.Query[struct {
		*transform.Transform
		*Spin
	}]
}

// Execute implements ecs.System.
func (s *SpinSystem) Execute(frame *ecs.UpdateFrame) {
	dt := float32(frame.DeltaTime)
	for item := range s.Spinning.Values() {
		item.Transform.RotateLocal(item.Spin.Axis, item.Spin.Rate*dt)
	}
}

// Checker returns a size by size texture of cells by cells squares.
func Checker(size, cells int, a, b color.NRGBA) *render.Texture {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	cell := max(size/max(cells, 1), 1)
	for y := range size {
		for x := range size {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return render.FromImage(img)
}

// Bundle spawns a ground plane, a camera, lights and Objects spinning
// meshes. Every Depth objects form a parent chain; Transparent is the
// fraction of objects drawn back to front.
type Bundle struct {
	Objects     int
	Depth       int
	Transparent float64
	Aspect      float32
	Seed        uint64
}

// Scene is what Bundle spawned.
type Scene struct {
	Camera  ecs.EntityId
	Objects []ecs.EntityId
	Lights  []ecs.EntityId
}

// Build implements ecs.Bundle. The spawned ids are stored as a Scene
// resource.
func (b Bundle) Build(world *ecs.World) error {
	meshes := ecs.Resource[render.AssetStorage[render.Mesh]](world)
	textures := ecs.Resource[render.AssetStorage[render.Texture]](world)
	if meshes == nil || textures == nil {
		return ErrNoRender
	}
	ecs.Register[Spin](world)
	world.Scheduler.Register(&SpinSystem{})

	storage := world.Storage
	cube := meshes.Insert(render.Cube(0.5))
	sphere := meshes.Insert(render.Sphere(0.5, 12, 18))
	ground := meshes.Insert(render.Plane(20))

	brick := textures.Insert(Checker(64, 4, color.NRGBA{R: 170, G: 74, B: 68, A: 255}, color.NRGBA{R: 120, G: 50, B: 45, A: 255}))
	grass := textures.Insert(Checker(64, 8, color.NRGBA{R: 86, G: 140, B: 60, A: 255}, color.NRGBA{R: 70, G: 118, B: 48, A: 255}))
	stone := textures.Insert(Checker(64, 2, color.NRGBA{R: 150, G: 150, B: 156, A: 255}, color.NRGBA{R: 110, G: 110, B: 118, A: 255}))
	glass := textures.Insert(render.SolidColor(0.6, 0.8, 1, 0.5))

	material := render.TriplanarMaterial{
		YZ:        render.TriplanarLayer{Albedo: brick},
		XZ:        render.TriplanarLayer{Albedo: grass},
		XY:        render.TriplanarLayer{Albedo: stone},
		Scale:     render.DefaultTriplanarScale,
		Sharpness: render.DefaultTriplanarSharpness,
	}
	floor := material
	floor.Scale = 4
	glassMaterial := render.NewTriplanarMaterial(render.TriplanarLayer{Albedo: glass})

	sc := &Scene{}
	storage.Spawn(transform.At(0, -1, 0), transform.Identity(), ground, floor)

	aspect := b.Aspect
	if aspect <= 0 {
		aspect = 16.0 / 9
	}
	cam := transform.At(0, 6, 18)
	cam.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	sc.Camera = storage.Spawn(cam, transform.Identity(), render.Perspective(aspect, mgl32.DegToRad(60), 0.1, 200))
	ecs.Insert(world, render.ActiveCamera{Entity: storage.CreateEntityRef(sc.Camera)})

	sc.Lights = append(sc.Lights,
		storage.Spawn(render.NewSunLight(mgl32.Vec3{1, 0.95, 0.85}, mgl32.Vec3{-0.4, -1, -0.3}, 0.01)),
		storage.Spawn(transform.At(-6, 3, 4), transform.Identity(), render.NewPointLight(mgl32.Vec3{1, 0.6, 0.3}, 8, 12)),
		storage.Spawn(transform.At(6, 3, -4), transform.Identity(), render.NewPointLight(mgl32.Vec3{0.3, 0.6, 1}, 8, 12)),
	)

	rng := rand.New(rand.NewPCG(b.Seed, b.Seed^0x9e3779b97f4a7c15))
	depth := max(b.Depth, 1)
	var parent *ecs.EntityRef
	for i := range b.Objects {
		mesh := cube
		if i%2 == 1 {
			mesh = sphere
		}
		spin := Spin{
			Axis: mgl32.Vec3{rng.Float32() - 0.5, 1, rng.Float32() - 0.5}.Normalize(),
			Rate: 0.2 + rng.Float32(),
		}

		var local transform.Transform
		if i%depth == 0 {
			local = transform.At(rng.Float32()*16-8, rng.Float32()*3, rng.Float32()*16-8)
			parent = nil
		} else {
			local = transform.At(0, 1.2, 0)
			local.SetScale(0.8)
		}

		components := []any{local, transform.Identity(), mesh, spin}
		if rng.Float64() < b.Transparent {
			components = append(components, glassMaterial, render.Transparent{})
		} else {
			components = append(components, material)
		}
		if parent != nil {
			components = append(components, transform.Parent{Entity: parent})
		}

		id := storage.Spawn(components...)
		parent = storage.CreateEntityRef(id)
		sc.Objects = append(sc.Objects, id)
	}

	ecs.Insert(world, *sc)
	return nil
}
