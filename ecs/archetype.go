package ecs

import (
	"reflect"
	"slices"
	"weak"

	"github.com/kamstrup/intmap"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Archetype holds every entity with exactly one combination of component
// types, one column per type. Slot indices are stable until Compact.
type Archetype struct {
	id      uint32
	types   []reflect.Type
	columns []componentColumn
	refs    *intmap.Map[EntityId, weak.Pointer[EntityRef]]
}

// NewArchetype creates an archetype for the given sorted types. It panics if
// a type has not been registered.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make([]componentColumn, len(types)),
		refs:    intmap.New[EntityId, weak.Pointer[EntityRef]](256),
	}

	for i, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.columns[i] = factory()
	}

	return a
}

func (a *Archetype) column(t reflect.Type) int {
	for i, typ := range a.types {
		if typ == t {
			return i
		}
	}
	return -1
}

// Spawn appends one entity and returns its slot index.
func (a *Archetype) Spawn(components []any) uint32 {
	var slot int
	for _, comp := range components {
		if i := a.column(componentType(comp)); i >= 0 {
			slot = a.columns[i].Append(comp)
		}
	}
	return uint32(slot)
}

// GetComponent returns a pointer to the component of compType stored in the
// given slot, or nil.
func (a *Archetype) GetComponent(index uint32, compType reflect.Type) any {
	i := a.column(compType)
	if i == -1 {
		return nil
	}
	return a.columns[i].Get(int(index))
}

// Delete frees the slot and invalidates any EntityRef pointing at it.
func (a *Archetype) Delete(index uint32) {
	id := NewEntityId(a.id, index)
	if wp, ok := a.refs.Get(id); ok {
		if ref := wp.Value(); ref != nil {
			ref.Id = 0
			ref.Archetype = nil
		}
		a.refs.Del(id)
	}

	for _, col := range a.columns {
		col.Delete(int(index))
	}
}

// Contains reports whether the slot is occupied.
func (a *Archetype) Contains(index uint32) bool {
	return len(a.columns) > 0 && a.columns[0].Has(int(index))
}

// HasComponent reports whether the archetype carries compType.
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

// ID returns the archetype's hash identifier.
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities.
func (a *Archetype) Len() int {
	if len(a.columns) == 0 {
		return 0
	}
	return a.columns[0].Len()
}

// Compact removes holes from every column. Live EntityRefs are rewritten
// to the new slots; refs whose holder was collected are dropped.
func (a *Archetype) Compact() {
	if len(a.columns) == 0 {
		return
	}

	moved := a.columns[0].Compact()
	for _, col := range a.columns[1:] {
		col.Compact()
	}

	kept := make(map[EntityId]weak.Pointer[EntityRef])
	for from, to := range moved {
		wp, ok := a.refs.Get(NewEntityId(a.id, uint32(from)))
		if !ok {
			continue
		}
		if ref := wp.Value(); ref != nil {
			ref.Id = NewEntityId(a.id, uint32(to))
			kept[ref.Id] = wp
		}
	}

	a.refs.Clear()
	for id, wp := range kept {
		a.refs.Put(id, wp)
	}
}

// Iter yields every live entity in slot order.
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		if len(a.columns) == 0 {
			return
		}
		for index := range a.columns[0].Iter() {
			if !yield(NewEntityId(a.id, uint32(index))) {
				return
			}
		}
	}
}
