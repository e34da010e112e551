package ecs

import (
	"fmt"
	"reflect"
)

// Bundle packages the components, resources and systems of one feature so
// that an application can install it in a single call.
type Bundle interface {
	Build(world *World) error
}

// BundleFunc adapts a function to the Bundle interface.
type BundleFunc func(world *World) error

// Build calls f.
func (f BundleFunc) Build(world *World) error { return f(world) }

// World groups the registry, storage and scheduler bundles install into.
type World struct {
	Registry  *ComponentRegistry
	Storage   *Storage
	Scheduler *Scheduler
}

// NewWorld creates an empty world.
func NewWorld(opts ...SchedulerOption) *World {
	registry := NewComponentRegistry()
	storage := NewStorage(registry)
	return &World{
		Registry:  registry,
		Storage:   storage,
		Scheduler: NewScheduler(storage, opts...),
	}
}

// AddBundle builds b into w. The error names the bundle type.
func (w *World) AddBundle(b Bundle) error {
	if err := b.Build(w); err != nil {
		return fmt.Errorf("ecs: bundle %s: %w", bundleName(b), err)
	}
	return nil
}

func bundleName(b Bundle) string {
	t := reflect.TypeOf(b)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

// Register registers T with the world's registry.
func Register[T any](w *World) {
	RegisterComponent[T](w.Registry)
}

// Insert stores value as a singleton resource, replacing any previous one.
func Insert[T any](w *World, value T) *Singleton[T] {
	w.Storage.AddSingleton(value)
	return NewSingleton[T](w.Storage)
}

// Resource returns the singleton of type T, or nil.
func Resource[T any](w *World) *T {
	var ptr *T
	if !w.Storage.ReadSingleton(&ptr) {
		return nil
	}
	return ptr
}
