package ecs

import (
	"iter"
	"reflect"
)

// componentColumn is the type-erased column an archetype keeps per component.
type componentColumn interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Compact() map[int]int
	Iter() iter.Seq[int]
}

// ComponentRegistry maps component types to column factories. Every Storage
// owns one registry; types must be registered before they are spawned.
// Registering after the storage exists is allowed.
type ComponentRegistry struct {
	factories map[reflect.Type]func() componentColumn
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() componentColumn),
	}
}

// RegisterComponent registers T with r. Registering twice is a no-op.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	if _, ok := r.factories[t]; ok {
		return
	}
	r.factories[t] = func() componentColumn {
		return &blockColumn[T]{}
	}
}

// IsRegistered reports whether t has been registered.
func (r *ComponentRegistry) IsRegistered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() componentColumn {
	return r.factories[t]
}

const blockSize = 64

// blockColumn stores values of T in fixed-size blocks so pointers handed out
// by Get stay valid while the column grows.
type blockColumn[T any] struct {
	blocks    [][blockSize]T
	filled    [][blockSize]bool
	freeSlots []int
	nextIndex int
}

func (c *blockColumn[T]) slot(index int) (int, int, bool) {
	if index < 0 {
		return 0, 0, false
	}
	b, s := index/blockSize, index%blockSize
	return b, s, b < len(c.blocks)
}

// Append stores item (a T or *T) and returns its slot, reusing freed slots
// first. It returns -1 for a value of the wrong type.
func (c *blockColumn[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		return -1
	}

	var index int
	if n := len(c.freeSlots); n > 0 {
		index = c.freeSlots[n-1]
		c.freeSlots = c.freeSlots[:n-1]
	} else {
		index = c.nextIndex
		c.nextIndex++
		if index/blockSize >= len(c.blocks) {
			c.blocks = append(c.blocks, [blockSize]T{})
			c.filled = append(c.filled, [blockSize]bool{})
		}
	}

	b, s := index/blockSize, index%blockSize
	c.blocks[b][s] = value
	c.filled[b][s] = true
	return index
}

// Get returns a *T for the slot, or nil when the slot is empty.
func (c *blockColumn[T]) Get(index int) any {
	b, s, ok := c.slot(index)
	if !ok || !c.filled[b][s] {
		return nil
	}
	return &c.blocks[b][s]
}

func (c *blockColumn[T]) Delete(index int) {
	b, s, ok := c.slot(index)
	if !ok || !c.filled[b][s] {
		return
	}
	var zero T
	c.filled[b][s] = false
	c.blocks[b][s] = zero
	c.freeSlots = append(c.freeSlots, index)
}

func (c *blockColumn[T]) Has(index int) bool {
	b, s, ok := c.slot(index)
	return ok && c.filled[b][s]
}

func (c *blockColumn[T]) Len() int {
	return c.nextIndex - len(c.freeSlots)
}

// Compact packs live values to the front and returns old→new slot indices.
func (c *blockColumn[T]) Compact() map[int]int {
	moved := make(map[int]int)
	live := c.Len()
	if live == 0 {
		c.blocks = make([][blockSize]T, 1)
		c.filled = make([][blockSize]bool, 1)
		c.freeSlots = nil
		c.nextIndex = 0
		return moved
	}

	nblocks := (live + blockSize - 1) / blockSize
	blocks := make([][blockSize]T, nblocks)
	filled := make([][blockSize]bool, nblocks)

	w := 0
	for r := 0; r < c.nextIndex; r++ {
		rb, rs := r/blockSize, r%blockSize
		if !c.filled[rb][rs] {
			continue
		}
		moved[r] = w
		blocks[w/blockSize][w%blockSize] = c.blocks[rb][rs]
		filled[w/blockSize][w%blockSize] = true
		w++
	}

	c.blocks = blocks
	c.filled = filled
	c.freeSlots = nil
	c.nextIndex = w
	return moved
}

// Iter yields the occupied slots in ascending order.
func (c *blockColumn[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < c.nextIndex; i++ {
			if c.filled[i/blockSize][i%blockSize] && !yield(i) {
				return
			}
		}
	}
}
