package scene_test

import (
	"image/color"
	"reflect"
	"testing"

	"github.com/plus3/facet/core/transform"
	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/internal/scene"
	"github.com/plus3/facet/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld(t *testing.T, b scene.Bundle) (*ecs.World, *scene.Scene) {
	t.Helper()
	world := ecs.NewWorld()
	require.NoError(t, world.AddBundle(transform.Bundle{}))
	require.NoError(t, world.AddBundle(render.Bundle{}))
	require.NoError(t, world.AddBundle(b))
	sc := ecs.Resource[scene.Scene](world)
	require.NotNil(t, sc)
	return world, sc
}

func TestBundleNeedsRender(t *testing.T) {
	err := ecs.NewWorld().AddBundle(scene.Bundle{Objects: 1})
	assert.ErrorIs(t, err, scene.ErrNoRender)
}

func TestBundleSpawnsChains(t *testing.T) {
	world, sc := newWorld(t, scene.Bundle{Objects: 6, Depth: 3, Seed: 7})
	require.Len(t, sc.Objects, 6)
	assert.Len(t, sc.Lights, 3)

	world.Scheduler.Once(0)

	parentType := reflect.TypeFor[transform.Parent]()
	for i, id := range sc.Objects {
		assert.Equal(t, i%3 != 0, world.Storage.HasComponent(id, parentType), "object %d", i)
	}

	root := ecs.ReadComponent[transform.GlobalTransform](world.Storage, sc.Objects[0])
	child := ecs.ReadComponent[transform.GlobalTransform](world.Storage, sc.Objects[1])
	require.NotNil(t, root)
	require.NotNil(t, child)
	assert.InDelta(t, 1.2, child.Position().Sub(root.Position()).Len(), 1e-4)

	vis := ecs.Resource[render.Visibility](world)
	require.NotNil(t, vis)
	// Ground, six objects, the camera and two point lights.
	assert.Equal(t, 10, vis.VisibleUnordered.Len())
	assert.Empty(t, vis.VisibleOrdered)

	active := ecs.Resource[render.ActiveCamera](world)
	require.NotNil(t, active)
	id, ok := world.Storage.ResolveEntityRef(active.Entity)
	require.True(t, ok)
	assert.Equal(t, sc.Camera, id)
}

func TestBundleTransparentObjects(t *testing.T) {
	world, sc := newWorld(t, scene.Bundle{Objects: 4, Depth: 1, Transparent: 1})
	world.Scheduler.Once(0)

	vis := ecs.Resource[render.Visibility](world)
	assert.Len(t, vis.VisibleOrdered, len(sc.Objects))
}

func TestSpinSystem(t *testing.T) {
	world, sc := newWorld(t, scene.Bundle{Objects: 1, Seed: 1})
	before := ecs.ReadComponent[transform.Transform](world.Storage, sc.Objects[0]).Rotation

	world.Scheduler.Once(0.5)

	after := ecs.ReadComponent[transform.Transform](world.Storage, sc.Objects[0]).Rotation
	assert.False(t, before.ApproxEqual(after))
	assert.InDelta(t, 1, after.Len(), 1e-5)
}

func TestChecker(t *testing.T) {
	red, blue := color.NRGBA{R: 255, A: 255}, color.NRGBA{B: 255, A: 255}
	tex := scene.Checker(4, 2, red, blue)
	assert.Equal(t, 4, tex.Width)
	assert.Equal(t, uint8(255), tex.At(0, 0).R)
	assert.Equal(t, uint8(255), tex.At(0.6, 0).B)
	assert.Equal(t, uint8(255), tex.At(0.6, 0.6).R)
}
