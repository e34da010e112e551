package ecs_test

import (
	"testing"

	"github.com/plus3/facet/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movingView struct {
	*Translation
	*Spin
}

type tintedView struct {
	*Translation
	Tint   *Tint   `ecs:"optional"`
	Frozen *Frozen `ecs:"without"`
}

func TestViewRequiredComponents(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())
	view := ecs.NewView[movingView](storage)

	moving := storage.Spawn(Translation{X: 1}, Spin{Rate: 3})
	still := storage.Spawn(Translation{X: 2})

	item := view.Get(moving)
	require.NotNil(t, item)
	assert.Equal(t, float32(1), item.Translation.X)
	assert.Equal(t, float32(3), item.Spin.Rate)
	assert.Nil(t, view.Get(still))

	item.Translation.X = 10
	assert.Equal(t, float32(10), ecs.ReadComponent[Translation](storage, moving).X)
}

func TestViewOptionalAndWithout(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())
	view := ecs.NewView[tintedView](storage)

	plain := storage.Spawn(Translation{X: 1})
	tinted := storage.Spawn(Translation{X: 2}, Tint{R: 1})
	frozen := storage.Spawn(Translation{X: 3}, Frozen{})

	got := map[ecs.EntityId]tintedView{}
	for id, item := range view.Iter() {
		got[id] = item
	}

	require.Len(t, got, 2)
	assert.Nil(t, got[plain].Tint)
	require.NotNil(t, got[tinted].Tint)
	assert.Equal(t, float32(1), got[tinted].Tint.R)
	assert.NotContains(t, got, frozen)
	assert.Nil(t, view.Get(frozen))
}

func TestViewIterFollowsCreationOrder(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())
	view := ecs.NewView[struct{ *Translation }](storage)

	storage.Spawn(Translation{X: 1}, Label("a"))
	storage.Spawn(Translation{X: 2})
	storage.Spawn(Translation{X: 3}, Spin{})
	storage.Spawn(Translation{X: 4}, Label("b"))

	var xs []float32
	for item := range view.Values() {
		xs = append(xs, item.Translation.X)
	}
	assert.Equal(t, []float32{1, 4, 2, 3}, xs)
}

func TestViewIterEarlyBreak(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())
	view := ecs.NewView[struct{ *Translation }](storage)
	for i := 0; i < 10; i++ {
		storage.Spawn(Translation{X: float32(i)})
	}

	n := 0
	for range view.Iter() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestViewSpawn(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())
	view := ecs.NewView[tintedView](storage)

	id := view.Spawn(tintedView{Translation: &Translation{Y: 7}})
	item := view.Get(id)
	require.NotNil(t, item)
	assert.Equal(t, float32(7), item.Translation.Y)
	assert.Nil(t, item.Tint)

	assert.Panics(t, func() { view.Spawn(tintedView{}) })
}

func TestViewInvalidDeclarations(t *testing.T) {
	storage := ecs.NewStorage(newRegistry())

	assert.Panics(t, func() { ecs.NewView[int](storage) })
	assert.Panics(t, func() { ecs.NewView[struct{ T Translation }](storage) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			T *Translation `ecs:"sometimes"`
		}](storage)
	})
}
