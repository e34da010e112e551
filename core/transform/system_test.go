package transform_test

import (
	"bytes"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/facet/core"
	"github.com/plus3/facet/core/transform"
	"github.com/plus3/facet/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld(t *testing.T) *ecs.World {
	t.Helper()
	world := ecs.NewWorld()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, world.AddBundle(transform.Bundle{Logger: logger}))
	return world
}

func spawn(world *ecs.World, tr transform.Transform, parent *ecs.EntityRef) *ecs.EntityRef {
	components := []any{tr, transform.Identity()}
	if parent != nil {
		components = append(components, transform.Parent{Entity: parent})
	}
	return world.Storage.CreateEntityRef(world.Storage.Spawn(components...))
}

func global(world *ecs.World, ref *ecs.EntityRef) *transform.GlobalTransform {
	return ecs.ReadComponent[transform.GlobalTransform](world.Storage, ref.Id)
}

func TestTransformSystemHierarchy(t *testing.T) {
	world := newWorld(t)

	root := spawn(world, transform.At(1, 0, 0), nil)
	child := spawn(world, transform.At(0, 1, 0), root)
	grandchild := spawn(world, transform.At(0, 0, 1), child)

	world.Scheduler.Once(0)

	assertVec(t, mgl32.Vec3{1, 0, 0}, global(world, root).Position())
	assertVec(t, mgl32.Vec3{1, 1, 0}, global(world, child).Position())
	assertVec(t, mgl32.Vec3{1, 1, 1}, global(world, grandchild).Position())
}

func TestTransformSystemRotatedParent(t *testing.T) {
	world := newWorld(t)

	rootTr := transform.New()
	rootTr.Yaw(mgl32.DegToRad(90))
	root := spawn(world, rootTr, nil)
	child := spawn(world, transform.At(0, 0, -1), root)

	world.Scheduler.Once(0)

	assertVec(t, mgl32.Vec3{-1, 0, 0}, global(world, child).Position())
}

func TestTransformSystemDeadParentIsRoot(t *testing.T) {
	world := newWorld(t)

	root := spawn(world, transform.At(5, 0, 0), nil)
	child := spawn(world, transform.At(0, 2, 0), root)
	world.Storage.Delete(root.Id)

	world.Scheduler.Once(0)

	assertVec(t, mgl32.Vec3{0, 2, 0}, global(world, child).Position())
}

func TestTransformSystemBreaksCycles(t *testing.T) {
	world := newWorld(t)

	a := spawn(world, transform.At(1, 0, 0), nil)
	b := spawn(world, transform.At(0, 1, 0), nil)
	world.Storage.AddComponent(a.Id, transform.Parent{Entity: b})
	world.Storage.AddComponent(b.Id, transform.Parent{Entity: a})

	require.NotPanics(t, func() { world.Scheduler.Once(0) })

	// a is visited first, so the cycle is broken at b.
	assertVec(t, mgl32.Vec3{0, 1, 0}, global(world, b).Position())
	assertVec(t, mgl32.Vec3{1, 1, 0}, global(world, a).Position())
}

func TestTransformSystemReportsCycleOnce(t *testing.T) {
	var buf bytes.Buffer
	world := ecs.NewWorld()
	require.NoError(t, world.AddBundle(transform.Bundle{Logger: slog.New(slog.NewTextHandler(&buf, nil))}))

	a := spawn(world, transform.New(), nil)
	b := spawn(world, transform.New(), nil)
	world.Storage.AddComponent(a.Id, transform.Parent{Entity: b})
	world.Storage.AddComponent(b.Id, transform.Parent{Entity: a})

	for range 3 {
		world.Scheduler.Once(0)
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "transform hierarchy cycle"))

	world.Storage.RemoveComponent(b.Id, reflect.TypeFor[transform.Parent]())
	world.Scheduler.Once(0)
	world.Storage.AddComponent(b.Id, transform.Parent{Entity: a})
	world.Scheduler.Once(0)
	assert.Equal(t, 2, strings.Count(buf.String(), "transform hierarchy cycle"), "a cycle formed again is reported again")
}

func TestTransformSystemParallelLevels(t *testing.T) {
	world := newWorld(t)
	ecs.Insert(world, core.NewThreadPool(4))

	root := spawn(world, transform.At(0, 10, 0), nil)
	children := make([]*ecs.EntityRef, 200)
	for i := range children {
		children[i] = spawn(world, transform.At(float32(i), 0, 0), root)
	}

	world.Scheduler.Once(0)

	for i, child := range children {
		assertVec(t, mgl32.Vec3{float32(i), 10, 0}, global(world, child).Position())
	}
}
