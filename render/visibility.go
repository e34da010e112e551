package render

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kamstrup/intmap"
	"github.com/plus3/facet/core/transform"
	"github.com/plus3/facet/ecs"
)

// Visibility is the per-frame result of visibility sorting. Passes that
// find it draw VisibleUnordered first, then VisibleOrdered in order.
type Visibility struct {
	VisibleUnordered *intmap.Set[ecs.EntityId]
	VisibleOrdered   []ecs.EntityId
}

// IsVisible reports whether id is in the unordered set.
func (v *Visibility) IsVisible(id ecs.EntityId) bool {
	return v.VisibleUnordered != nil && v.VisibleUnordered.Has(id)
}

// Reset empties both lists.
func (v *Visibility) Reset() {
	if v.VisibleUnordered == nil {
		v.VisibleUnordered = intmap.NewSet[ecs.EntityId](64)
	} else {
		v.VisibleUnordered.Clear()
	}
	v.VisibleOrdered = v.VisibleOrdered[:0]
}

type cameraView struct {
	Camera *Camera
	Global *transform.GlobalTransform
}

// CameraPosition returns the world position of the camera passes render
// from: the ActiveCamera when it is alive and has a transform, otherwise
// the first camera entity. ok is false when there is none.
func CameraPosition(storage *ecs.Storage, active *ActiveCamera) (pos mgl32.Vec3, ok bool) {
	view := ecs.NewView[cameraView](storage)
	if active != nil {
		if c := view.GetRef(active.Entity); c != nil {
			return c.Global.Position(), true
		}
	}
	for c := range view.Values() {
		return c.Global.Position(), true
	}
	return mgl32.Vec3{}, false
}

type sortEntry struct {
	id   ecs.EntityId
	dist float32
}

// VisibilitySortingSystem fills the Visibility resource: opaque entities
// go to the unordered set, transparent ones to the ordered list sorted back
// to front by distance from the camera. Hidden entities are skipped.
type VisibilitySortingSystem struct {
	Active     ecs.Singleton[ActiveCamera]
	Visibility ecs.Singleton[Visibility]
	Entities   ecs.Query[struct {
		Global          *transform.GlobalTransform
		Transparent     *Transparent     `ecs:"optional"`
		Hidden          *Hidden          `ecs:"without"`
		HiddenPropagate *HiddenPropagate `ecs:"without"`
	}]

	transparent []sortEntry
}

// Execute implements ecs.System.
func (s *VisibilitySortingSystem) Execute(frame *ecs.UpdateFrame) {
	vis := s.Visibility.Get()
	if vis == nil {
		s.Visibility.Set(Visibility{})
		vis = s.Visibility.Get()
	}
	vis.Reset()

	origin, _ := CameraPosition(frame.Storage, s.Active.Get())

	s.transparent = s.transparent[:0]
	for id, e := range s.Entities.Iter() {
		if e.Transparent == nil {
			vis.VisibleUnordered.Add(id)
			continue
		}
		s.transparent = append(s.transparent, sortEntry{
			id:   id,
			dist: e.Global.Position().Sub(origin).Len(),
		})
	}

	slices.SortStableFunc(s.transparent, func(a, b sortEntry) int {
		switch {
		case a.dist > b.dist:
			return -1
		case a.dist < b.dist:
			return 1
		}
		return 0
	})
	for _, e := range s.transparent {
		vis.VisibleOrdered = append(vis.VisibleOrdered, e.id)
	}
}
