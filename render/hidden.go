package render

import (
	"reflect"

	"github.com/plus3/facet/core/transform"
	"github.com/plus3/facet/ecs"
)

// Hidden excludes one entity from rendering.
type Hidden struct{}

// HiddenPropagate excludes an entity and all of its descendants.
// HideHierarchySystem copies it down the Parent hierarchy with Inherited
// set, and removes inherited copies once no ancestor carries it.
type HiddenPropagate struct {
	Inherited bool
}

var hiddenPropagateType = reflect.TypeFor[HiddenPropagate]()

// Transparent marks entities drawn after opaque ones, back to front.
type Transparent struct{}

// HideHierarchySystem keeps HiddenPropagate in sync with the hierarchy.
// Changes are written to storage before the system returns, so systems
// scheduled after it already see the hidden descendants.
type HideHierarchySystem struct {
	Children ecs.Query[struct {
		Parent *transform.Parent
		Hidden *HiddenPropagate `ecs:"optional"`
	}]

	memo         map[ecs.EntityId]bool
	hide, unhide []ecs.EntityId
}

// Execute implements ecs.System.
func (s *HideHierarchySystem) Execute(frame *ecs.UpdateFrame) {
	if s.memo == nil {
		s.memo = make(map[ecs.EntityId]bool)
	}
	clear(s.memo)
	s.hide, s.unhide = s.hide[:0], s.unhide[:0]

	for id, child := range s.Children.Iter() {
		hidden := s.ancestorHidden(frame.Storage, child.Parent, id)
		switch {
		case hidden && child.Hidden == nil:
			s.hide = append(s.hide, id)
		case !hidden && child.Hidden != nil && child.Hidden.Inherited:
			s.unhide = append(s.unhide, id)
		}
	}

	// Moves only relocate the moved entity, so the collected ids stay valid.
	for _, id := range s.hide {
		frame.Storage.AddComponent(id, HiddenPropagate{Inherited: true})
	}
	for _, id := range s.unhide {
		frame.Storage.RemoveComponent(id, hiddenPropagateType)
	}
}

// ancestorHidden reports whether any ancestor of self carries a
// HiddenPropagate it did not inherit. memo caches the answer per ancestor,
// counting the ancestor's own component.
func (s *HideHierarchySystem) ancestorHidden(storage *ecs.Storage, parent *transform.Parent, self ecs.EntityId) bool {
	var chain []ecs.EntityId
	seen := map[ecs.EntityId]bool{self: true}
	result := false

	for parent != nil {
		id, ok := storage.ResolveEntityRef(parent.Entity)
		if !ok || seen[id] {
			break
		}
		if v, ok := s.memo[id]; ok {
			result = v
			break
		}
		seen[id] = true
		chain = append(chain, id)

		if h := ecs.ReadComponent[HiddenPropagate](storage, id); h != nil && !h.Inherited {
			result = true
			break
		}
		parent = ecs.ReadComponent[transform.Parent](storage, id)
	}

	// result covers every node of the chain: each is hidden by the node
	// that decided it or by that node's ancestors.
	for _, id := range chain {
		s.memo[id] = result
	}
	return result
}
