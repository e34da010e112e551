package ecs

import (
	"reflect"
	"unsafe"
)

// Singleton gives typed access to a storage-wide value that belongs to no
// entity (a resource: time, thread pool, active camera, ...).
type Singleton[T any] struct {
	storage      *Storage
	componentPtr unsafe.Pointer
	gen          uint64
}

// NewSingleton returns an accessor for T, inserting initializer (or the zero
// value) when storage has no T yet.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	if storage.getSingletonEntry(reflect.TypeFor[T]()) == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(value)
	}

	s := &Singleton[T]{}
	s.Init(storage)
	return s
}

// Init binds the accessor to storage. Missing singletons are looked up
// again on every access until they appear.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.componentPtr = nil
	s.updateCache()
}

func (s *Singleton[T]) updateCache() {
	if s.storage == nil {
		return
	}
	s.gen = s.storage.singletonGen
	if entry := s.storage.getSingletonEntry(reflect.TypeFor[T]()); entry != nil {
		s.componentPtr = entry.dataPtr
	} else {
		s.componentPtr = nil
	}
}

// Get returns the singleton, or nil when it is absent.
func (s *Singleton[T]) Get() *T {
	if s.componentPtr == nil || (s.storage != nil && s.gen != s.storage.singletonGen) {
		s.updateCache()
	}
	return (*T)(s.componentPtr)
}

// Exists reports whether the singleton is present.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

// Set stores value as the singleton, inserting it if needed.
func (s *Singleton[T]) Set(value T) {
	s.storage.AddSingleton(value)
	s.updateCache()
}
