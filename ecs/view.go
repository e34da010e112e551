package ecs

import (
	"iter"
	"reflect"
	"sort"
	"unsafe"
)

// View reads entities through a struct of component pointers.
//
// Every field of T must be a pointer to a registered component type.
// Embedded fields are required. Named fields are required too unless tagged
// `ecs:"optional"`, in which case they are nil when absent. Entities that
// carry a type tagged `ecs:"without"` are excluded; the field is always nil.
type View[T any] struct {
	storage     *Storage
	types       []reflect.Type
	modes       []fieldMode
	fieldOffset []uintptr
}

type fieldMode uint8

const (
	fieldRequired fieldMode = iota
	fieldOptional
	fieldWithout
)

// NewView creates a view over storage. It panics if T is not a struct of
// pointers or carries an unknown ecs tag.
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{storage: storage}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		mode := fieldRequired
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				mode = fieldOptional
			case "without":
				mode = fieldWithout
			default:
				panic("invalid ecs tag value: \"" + tag + "\" (expected \"optional\" or \"without\")")
			}
		}

		v.types = append(v.types, field.Type.Elem())
		v.modes = append(v.modes, mode)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
	}
	return v
}

// Init rebinds the view to storage, so View fields are bound by Bind
// like Query fields.
func (v *View[T]) Init(storage *Storage) {
	*v = *NewView[T](storage)
}

// Types returns the component types named by the view, in field order.
func (v *View[T]) Types() []reflect.Type {
	return v.types
}

func (v *View[T]) field(base unsafe.Pointer, i int) *unsafe.Pointer {
	return (*unsafe.Pointer)(unsafe.Add(base, v.fieldOffset[i]))
}

// Fill points the fields of ptr at the entity's components. It returns
// false if the entity does not match the view.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	archetype, ok := v.storage.archetypes[id.ArchetypeId()]
	if !ok || !archetype.Contains(id.Index()) {
		return false
	}
	if !v.matchesArchetype(archetype) {
		return false
	}
	return v.populateResult(unsafe.Pointer(ptr), archetype, int(id.Index()), v.buildStorageIndices(archetype))
}

// Get returns the filled view struct for id, or nil.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// GetRef is Get for an EntityRef.
func (v *View[T]) GetRef(ref *EntityRef) *T {
	id, ok := v.storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	return v.Get(id)
}

func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for i, t := range v.types {
		switch v.modes[i] {
		case fieldRequired:
			if !archetype.HasComponent(t) {
				return false
			}
		case fieldWithout:
			if archetype.HasComponent(t) {
				return false
			}
		}
	}
	return true
}

func (v *View[T]) buildStorageIndices(archetype *Archetype) []int {
	indices := make([]int, len(v.types))
	for i, t := range v.types {
		indices[i] = archetype.column(t)
	}
	return indices
}

func (v *View[T]) populateResult(base unsafe.Pointer, archetype *Archetype, index int, columns []int) bool {
	for i, col := range columns {
		dst := v.field(base, i)
		if v.modes[i] == fieldWithout || col == -1 {
			if v.modes[i] == fieldRequired {
				return false
			}
			*dst = nil
			continue
		}

		component := archetype.columns[col].Get(index)
		if component == nil {
			if v.modes[i] == fieldRequired {
				return false
			}
			*dst = nil
			continue
		}
		*dst = dataPointer(component)
	}
	return true
}

func (v *View[T]) iterArchetype(archetype *Archetype, yield func(EntityId, T) bool) bool {
	if len(archetype.columns) == 0 {
		return true
	}
	columns := v.buildStorageIndices(archetype)

	var result T
	base := unsafe.Pointer(&result)
	for index := range archetype.columns[0].Iter() {
		if !v.populateResult(base, archetype, index, columns) {
			continue
		}
		if !yield(NewEntityId(archetype.id, uint32(index)), result) {
			return false
		}
	}
	return true
}

// Iter yields every matching entity, archetypes in creation order.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for _, id := range v.storage.order {
			archetype := v.storage.archetypes[id]
			if !v.matchesArchetype(archetype) {
				continue
			}
			if !v.iterArchetype(archetype, yield) {
				return
			}
		}
	}
}

// Values is Iter without the ids.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates an entity from the non-nil fields of data. Required fields
// must be set.
func (v *View[T]) Spawn(data T) EntityId {
	base := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	for i, t := range v.types {
		ptr := *v.field(base, i)
		if ptr == nil || v.modes[i] == fieldWithout {
			if v.modes[i] == fieldRequired {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		components = append(components, reflect.NewAt(t, ptr).Elem().Interface())
	}

	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	sort.SliceStable(components, func(i, j int) bool {
		return componentType(components[i]).String() < componentType(components[j]).String()
	})
	return v.storage.Spawn(components...)
}
