package ecs

import (
	"reflect"
	"sort"
	"unsafe"
	"weak"
)

// Storage owns every archetype and singleton of one world.
type Storage struct {
	archetypes map[uint32]*Archetype
	order      []uint32
	registry   *ComponentRegistry

	singletons   map[reflect.Type]*singletonEntry
	singletonGen uint64
}

type singletonEntry struct {
	value   reflect.Value
	dataPtr unsafe.Pointer
}

// NewStorage creates an empty storage bound to registry.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		registry:   registry,
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the component registry the storage was created with.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

func (s *Storage) archetypeFor(id uint32, types []reflect.Type) *Archetype {
	archetype, ok := s.archetypes[id]
	if !ok {
		archetype = NewArchetype(id, types, s.registry)
		s.archetypes[id] = archetype
		s.order = append(s.order, id)
	}
	return archetype
}

// CreateEntityRef returns the EntityRef for id, creating it on first use.
// Refs are held weakly; the same pointer is returned while it is reachable.
func (s *Storage) CreateEntityRef(id EntityId) *EntityRef {
	archetype := s.archetypes[id.ArchetypeId()]
	if archetype == nil {
		return nil
	}

	if wp, ok := archetype.refs.Get(id); ok {
		if ref := wp.Value(); ref != nil {
			return ref
		}
		archetype.refs.Del(id)
	}

	ref := &EntityRef{Id: id, Archetype: archetype}
	archetype.refs.Put(id, weak.Make(ref))
	return ref
}

// ResolveEntityRef returns the current id of the referenced entity.
func (s *Storage) ResolveEntityRef(ref *EntityRef) (EntityId, bool) {
	if !ref.Alive() {
		return 0, false
	}
	return ref.Id, true
}

// InvalidateEntityRef detaches ref from its entity without deleting it.
func (s *Storage) InvalidateEntityRef(ref *EntityRef) bool {
	if !ref.Alive() {
		return false
	}
	if archetype := s.archetypes[ref.Id.ArchetypeId()]; archetype != nil {
		archetype.refs.Del(ref.Id)
	}
	ref.Id = 0
	ref.Archetype = nil
	return true
}

// GetArchetype returns the archetype storing exactly the given components.
func (s *Storage) GetArchetype(components ...any) *Archetype {
	return s.archetypes[hashTypesToUint32(extractComponentTypes(components))]
}

// GetArchetypeByTypes is GetArchetype keyed by reflect.Type.
func (s *Storage) GetArchetypeByTypes(types []reflect.Type) *Archetype {
	sorted := append([]reflect.Type(nil), types...)
	sort.Sort(byTypeName(sorted))
	return s.archetypes[hashTypesToUint32(sorted)]
}

// GetArchetypeById returns the archetype with the given id, or nil.
func (s *Storage) GetArchetypeById(id uint32) *Archetype {
	return s.archetypes[id]
}

// GetArchetypes returns all archetypes in creation order.
func (s *Storage) GetArchetypes() []*Archetype {
	out := make([]*Archetype, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.archetypes[id])
	}
	return out
}

// Spawn creates an entity from the given components (values or pointers).
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	types := extractComponentTypes(components)
	archetypeId := hashTypesToUint32(types)
	index := s.archetypeFor(archetypeId, types).Spawn(components)
	return NewEntityId(archetypeId, index)
}

// Alive reports whether id names a live entity.
func (s *Storage) Alive(id EntityId) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	return ok && archetype.Contains(id.Index())
}

// Delete removes the entity. Unknown ids are ignored.
func (s *Storage) Delete(id EntityId) {
	if archetype, ok := s.archetypes[id.ArchetypeId()]; ok {
		archetype.Delete(id.Index())
	}
}

// move re-homes the entity into the archetype made of newTypes, taking
// components from the old slot except for the optional extra value.
func (s *Storage) move(id EntityId, old *Archetype, newTypes []reflect.Type, extra any) EntityId {
	newArchetypeId := hashTypesToUint32(newTypes)
	newArchetype := s.archetypeFor(newArchetypeId, newTypes)

	extraType := reflect.Type(nil)
	if extra != nil {
		extraType = componentType(extra)
	}

	components := make([]any, 0, len(newTypes))
	for _, typ := range newTypes {
		if typ == extraType {
			components = append(components, extra)
		} else {
			components = append(components, old.GetComponent(id.Index(), typ))
		}
	}

	newId := NewEntityId(newArchetypeId, newArchetype.Spawn(components))

	if wp, ok := old.refs.Get(id); ok {
		if ref := wp.Value(); ref != nil {
			ref.Id = newId
			ref.Archetype = newArchetype
		}
		old.refs.Del(id)
		newArchetype.refs.Put(newId, wp)
	}

	old.Delete(id.Index())
	return newId
}

// AddComponent adds (or replaces) a component and returns the entity's new id.
func (s *Storage) AddComponent(id EntityId, component any) EntityId {
	old := s.archetypes[id.ArchetypeId()]
	if old == nil || !old.Contains(id.Index()) {
		return 0
	}

	compType := componentType(component)
	if old.HasComponent(compType) {
		ptr := old.GetComponent(id.Index(), compType)
		reflect.ValueOf(ptr).Elem().Set(reflect.Indirect(reflect.ValueOf(component)))
		return id
	}

	newTypes := make([]reflect.Type, 0, len(old.types)+1)
	newTypes = append(newTypes, old.types...)
	newTypes = append(newTypes, compType)
	sort.Sort(byTypeName(newTypes))

	return s.move(id, old, newTypes, component)
}

// RemoveComponent drops a component and returns the entity's new id. An
// entity left without components is deleted and 0 is returned.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) EntityId {
	old := s.archetypes[id.ArchetypeId()]
	if old == nil || !old.Contains(id.Index()) {
		return 0
	}
	if !old.HasComponent(compType) {
		return id
	}

	newTypes := make([]reflect.Type, 0, len(old.types)-1)
	for _, typ := range old.types {
		if typ != compType {
			newTypes = append(newTypes, typ)
		}
	}

	if len(newTypes) == 0 {
		old.Delete(id.Index())
		return 0
	}

	return s.move(id, old, newTypes, nil)
}

// GetComponent returns a pointer to the entity's component, or nil.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return nil
	}
	return archetype.GetComponent(id.Index(), compType)
}

// HasComponent reports whether the live entity carries compType.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok || !archetype.Contains(id.Index()) {
		return false
	}
	return archetype.HasComponent(compType)
}

// Compact compacts every archetype.
func (s *Storage) Compact() {
	for _, id := range s.order {
		s.archetypes[id].Compact()
	}
}

// AddSingleton stores value as the singleton of its type. Replacing an
// existing singleton writes in place so cached Singleton pointers stay valid.
func (s *Storage) AddSingleton(value any) {
	typ := componentType(value)
	v := reflect.Indirect(reflect.ValueOf(value))

	if entry, ok := s.singletons[typ]; ok {
		entry.value.Elem().Set(v)
		return
	}

	ptr := reflect.New(typ)
	ptr.Elem().Set(v)
	s.singletons[typ] = &singletonEntry{
		value:   ptr,
		dataPtr: ptr.UnsafePointer(),
	}
}

// ReadSingleton points *target (a **T) at the stored singleton of type T and
// reports whether one exists.
func (s *Storage) ReadSingleton(target any) bool {
	tv := reflect.ValueOf(target)
	if tv.Kind() != reflect.Ptr || tv.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton target must be a pointer to a pointer")
	}
	entry := s.singletons[tv.Elem().Type().Elem()]
	if entry == nil {
		return false
	}
	tv.Elem().Set(entry.value)
	return true
}

// RemoveSingleton deletes the singleton of type t.
func (s *Storage) RemoveSingleton(t reflect.Type) bool {
	if _, ok := s.singletons[t]; !ok {
		return false
	}
	delete(s.singletons, t)
	s.singletonGen++
	return true
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

// componentType returns the value type of a component, dereferencing
// pointers.
func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// extractComponentTypes returns the sorted value types of components.
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		t := componentType(comp)
		switch t.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
			panic("components cannot be pointers, maps, channels, or functions")
		}
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}

// hashTypesToUint32 is FNV-1a over the runtime type pointers of a sorted
// type list.
func hashTypesToUint32(types []reflect.Type) uint32 {
	var h uint32 = 2166136261
	const prime uint32 = 16777619

	for _, t := range types {
		ptr := uintptr(dataPointer(t))
		val := uint32(ptr)
		if unsafe.Sizeof(uintptr(0)) == 8 {
			val ^= uint32(uint64(ptr) >> 32)
		}
		h ^= val
		h *= prime
	}

	return h
}

// ComponentReader is anything that can look up an entity's component.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's T, or nil when absent.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	v, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return v
}
