package ecs_test

import (
	"reflect"
	"runtime"
	"testing"

	"github.com/plus3/facet/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIdPacking(t *testing.T) {
	for _, tc := range []struct{ arch, index uint32 }{
		{0, 0}, {1, 0}, {0, 1}, {0xFFFFFFFF, 0xFFFFFFFF}, {0x12345678, 0x9ABCDEF0},
	} {
		id := ecs.NewEntityId(tc.arch, tc.index)
		assert.Equal(t, tc.arch, id.ArchetypeId())
		assert.Equal(t, tc.index, id.Index())
	}
}

func TestSpawnAndGet(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())

	id := storage.Spawn(&Translation{X: 1, Y: 2, Z: 3}, Label("crate"))
	require.True(t, storage.Alive(id))

	tr := ecs.ReadComponent[Translation](storage, id)
	require.NotNil(t, tr)
	assert.Equal(t, Translation{X: 1, Y: 2, Z: 3}, *tr)

	label := ecs.ReadComponent[Label](storage, id)
	require.NotNil(t, label)
	assert.Equal(t, Label("crate"), *label)

	assert.Nil(t, ecs.ReadComponent[Spin](storage, id))
	assert.True(t, storage.HasComponent(id, reflect.TypeFor[Label]()))
	assert.False(t, storage.HasComponent(id, reflect.TypeFor[Spin]()))
}

func TestSpawnPanics(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())

	assert.Panics(t, func() { storage.Spawn() })
	assert.Panics(t, func() { storage.Spawn(Clock{}) }, "unregistered type")
	assert.Panics(t, func() { storage.Spawn(map[string]int{}) })
}

func TestComponentOrderDoesNotMatter(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())

	a := storage.Spawn(Translation{}, Spin{})
	b := storage.Spawn(Spin{}, Translation{})
	assert.Equal(t, a.ArchetypeId(), b.ArchetypeId())
	assert.Len(t, storage.GetArchetypes(), 1)
}

func TestDeleteKeepsOtherSlots(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())

	a := storage.Spawn(Translation{X: 1})
	b := storage.Spawn(Translation{X: 2})
	c := storage.Spawn(Translation{X: 3})

	storage.Delete(b)
	assert.False(t, storage.Alive(b))
	assert.Nil(t, ecs.ReadComponent[Translation](storage, b))
	assert.Equal(t, float32(1), ecs.ReadComponent[Translation](storage, a).X)
	assert.Equal(t, float32(3), ecs.ReadComponent[Translation](storage, c).X)

	d := storage.Spawn(Translation{X: 4})
	assert.Equal(t, b, d, "freed slot is reused")

	storage.Delete(ecs.NewEntityId(0xDEAD, 7))
}

func TestAddAndRemoveComponent(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())

	id := storage.Spawn(Translation{X: 5})
	ref := storage.CreateEntityRef(id)

	moved := storage.AddComponent(id, Spin{Rate: 2})
	assert.NotEqual(t, id.ArchetypeId(), moved.ArchetypeId())
	assert.Equal(t, moved, ref.Id)
	assert.Equal(t, float32(5), ecs.ReadComponent[Translation](storage, moved).X)
	assert.Equal(t, float32(2), ecs.ReadComponent[Spin](storage, moved).Rate)
	assert.False(t, storage.Alive(id))

	same := storage.AddComponent(moved, Spin{Rate: 9})
	assert.Equal(t, moved, same, "replacing keeps the archetype")
	assert.Equal(t, float32(9), ecs.ReadComponent[Spin](storage, same).Rate)

	back := storage.RemoveComponent(same, reflect.TypeFor[Spin]())
	assert.Equal(t, back, ref.Id)
	assert.Nil(t, ecs.ReadComponent[Spin](storage, back))

	gone := storage.RemoveComponent(back, reflect.TypeFor[Translation]())
	assert.Equal(t, ecs.EntityId(0), gone)
	assert.False(t, ref.Alive())
}

func TestEntityRefLifecycle(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())

	id := storage.Spawn(Translation{})
	ref := storage.CreateEntityRef(id)
	assert.Same(t, ref, storage.CreateEntityRef(id))

	resolved, ok := storage.ResolveEntityRef(ref)
	assert.True(t, ok)
	assert.Equal(t, id, resolved)

	storage.Delete(id)
	_, ok = storage.ResolveEntityRef(ref)
	assert.False(t, ok)
	assert.False(t, storage.InvalidateEntityRef(ref))
	assert.Nil(t, storage.CreateEntityRef(ecs.NewEntityId(42, 0)))
}

func TestCompactRewritesRefs(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())

	ids := make([]ecs.EntityId, 6)
	for i := range ids {
		ids[i] = storage.Spawn(Translation{X: float32(i)})
	}
	last := storage.CreateEntityRef(ids[5])
	for _, id := range ids[:3] {
		storage.Delete(id)
	}

	storage.Compact()
	runtime.KeepAlive(last)

	require.True(t, last.Alive())
	assert.Equal(t, uint32(2), last.Id.Index())
	assert.Equal(t, float32(5), ecs.ReadComponent[Translation](storage, last.Id).X)
	assert.Equal(t, 3, storage.GetArchetypes()[0].Len())
}

func TestSingletons(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())

	var clock *Clock
	assert.False(t, storage.ReadSingleton(&clock))

	accessor := ecs.NewSingleton[Clock](storage, Clock{Ticks: 3})
	require.True(t, storage.ReadSingleton(&clock))
	assert.Same(t, clock, accessor.Get())

	storage.AddSingleton(Clock{Ticks: 10})
	assert.Equal(t, 10, accessor.Get().Ticks, "replacement is visible through cached pointers")

	assert.True(t, storage.RemoveSingleton(reflect.TypeFor[Clock]()))
	assert.Nil(t, accessor.Get())
	assert.False(t, accessor.Exists())

	accessor.Set(Clock{Ticks: 1})
	assert.Equal(t, 1, accessor.Get().Ticks)
	assert.Panics(t, func() { storage.ReadSingleton(clock) })
}

func TestCollectStats(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())

	stats := storage.CollectStats()
	assert.Zero(t, stats.ArchetypeCount)
	assert.Zero(t, stats.TotalEntityCount)

	storage.Spawn(1, Label("a"))
	storage.Spawn(2, Label("b"))
	dead := storage.Spawn(Translation{})
	storage.Delete(dead)
	ecs.NewSingleton[Clock](storage)

	stats = storage.CollectStats()
	assert.Equal(t, 2, stats.ArchetypeCount)
	assert.Equal(t, 2, stats.TotalEntityCount)
	assert.Equal(t, 1, stats.SingletonCount)
	assert.Equal(t, []string{"ecs_test.Clock"}, stats.SingletonTypes)
	require.Len(t, stats.ArchetypeBreakdown, 2)
	assert.Equal(t, 2, stats.ArchetypeBreakdown[0].EntityCount)
	assert.Equal(t, 0, stats.ArchetypeBreakdown[1].EntityCount)
}
