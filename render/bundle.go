package render

import (
	"github.com/plus3/facet/ecs"
)

// Bundle registers the render components, inserts the asset storages,
// MaterialDefaults, AmbientColor and Visibility resources, and schedules
// HideHierarchySystem followed by VisibilitySortingSystem.
//
// It expects the transform bundle to run first so GlobalTransforms are
// current when visibility is sorted.
type Bundle struct {
	Ambient AmbientColor
	// NoSorting leaves Visibility out; passes then draw every non-hidden
	// entity in storage order.
	NoSorting bool
}

// Build implements ecs.Bundle.
func (b Bundle) Build(world *ecs.World) error {
	ecs.Register[MeshHandle](world)
	ecs.Register[TriplanarMaterial](world)
	ecs.Register[Material](world)
	ecs.Register[Camera](world)
	ecs.Register[Light](world)
	ecs.Register[Hidden](world)
	ecs.Register[HiddenPropagate](world)
	ecs.Register[Transparent](world)

	ecs.Insert(world, NewAssetStorage[Mesh]())
	textures := ecs.Insert(world, NewAssetStorage[Texture]())
	ecs.Insert(world, NewMaterialDefaults(textures.Get()))
	ecs.Insert(world, b.Ambient)

	world.Scheduler.Register(&HideHierarchySystem{})
	if !b.NoSorting {
		ecs.Insert(world, Visibility{})
		world.Scheduler.Register(&VisibilitySortingSystem{})
	}
	return nil
}
