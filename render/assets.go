// Package render holds the renderer's components, resources and asset
// types: meshes, textures, materials, cameras, lights and visibility.
// Drawing itself lives in render/pipe and the passes in render/pass.
package render

import (
	"github.com/kamstrup/intmap"
)

const prefix = "render: "

// Handle refers to an asset inside an AssetStorage. The zero Handle refers
// to nothing.
type Handle[T any] struct {
	id uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle[T]) IsZero() bool { return h.id == 0 }

// ID returns the storage key of h.
func (h Handle[T]) ID() uint32 { return h.id }

// AssetStorage owns loaded assets of one type. It is stored as a resource;
// the zero value is ready to use.
type AssetStorage[T any] struct {
	assets *intmap.Map[uint32, *T]
	next   uint32
}

// NewAssetStorage creates an empty storage.
func NewAssetStorage[T any]() AssetStorage[T] {
	return AssetStorage[T]{assets: intmap.New[uint32, *T](16)}
}

// Insert stores asset and returns its handle.
func (s *AssetStorage[T]) Insert(asset *T) Handle[T] {
	if s.assets == nil {
		s.assets = intmap.New[uint32, *T](16)
	}
	s.next++
	s.assets.Put(s.next, asset)
	return Handle[T]{id: s.next}
}

// Replace swaps the asset behind h. It reports false for unknown handles.
func (s *AssetStorage[T]) Replace(h Handle[T], asset *T) bool {
	if s.assets == nil || !s.assets.Has(h.id) {
		return false
	}
	s.assets.Put(h.id, asset)
	return true
}

// Get returns the asset for h, or nil if it was never stored or has been
// removed.
func (s *AssetStorage[T]) Get(h Handle[T]) *T {
	if s == nil || s.assets == nil || h.id == 0 {
		return nil
	}
	asset, _ := s.assets.Get(h.id)
	return asset
}

// Remove drops the asset behind h.
func (s *AssetStorage[T]) Remove(h Handle[T]) bool {
	if s.assets == nil {
		return false
	}
	return s.assets.Del(h.id)
}

// Len returns the number of stored assets.
func (s *AssetStorage[T]) Len() int {
	if s.assets == nil {
		return 0
	}
	return s.assets.Len()
}

// MeshHandle is the component that attaches a mesh to an entity.
type MeshHandle = Handle[Mesh]

// TextureHandle refers to a Texture.
type TextureHandle = Handle[Texture]
