package ecs_test

import (
	"errors"
	"testing"

	"github.com/plus3/facet/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type motionBundle struct {
	Rate float32
}

func (b motionBundle) Build(world *ecs.World) error {
	ecs.Register[Translation](world)
	ecs.Register[Spin](world)
	ecs.Insert(world, Clock{})
	world.Scheduler.Register(&spinSystem{})
	world.Storage.Spawn(Translation{}, Spin{Rate: b.Rate})
	return nil
}

func TestWorldAddBundle(t *testing.T) {
	world := ecs.NewWorld()
	require.NoError(t, world.AddBundle(motionBundle{Rate: 2}))

	world.Scheduler.Once(1)
	world.Scheduler.Once(1)

	clock := ecs.Resource[Clock](world)
	require.NotNil(t, clock)
	assert.Equal(t, 2, clock.Ticks)

	for item := range ecs.NewView[movingView](world.Storage).Values() {
		assert.Equal(t, float32(4), item.Translation.X)
	}
}

func TestWorldAddBundleWrapsErrors(t *testing.T) {
	world := ecs.NewWorld()
	boom := errors.New("boom")

	err := world.AddBundle(ecs.BundleFunc(func(*ecs.World) error { return boom }))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "BundleFunc")
}

func TestWorldResourceMissing(t *testing.T) {
	world := ecs.NewWorld()
	assert.Nil(t, ecs.Resource[Clock](world))

	accessor := ecs.Insert(world, Clock{Ticks: 5})
	assert.Equal(t, 5, accessor.Get().Ticks)
	ecs.Insert(world, Clock{Ticks: 6})
	assert.Equal(t, 6, accessor.Get().Ticks)
}
