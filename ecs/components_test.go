package ecs_test

import "github.com/plus3/facet/ecs"

type Translation struct {
	X, Y, Z float32
}

type Spin struct {
	Rate float32
}

type Label string

type Tint struct {
	R, G, B float32
}

type Frozen struct{}

type Clock struct {
	Ticks int
}

type Inventory struct {
	Items []string
}

func newRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Translation](registry)
	ecs.RegisterComponent[Spin](registry)
	ecs.RegisterComponent[Label](registry)
	ecs.RegisterComponent[Tint](registry)
	ecs.RegisterComponent[Frozen](registry)
	ecs.RegisterComponent[Inventory](registry)
	ecs.RegisterComponent[int](registry)
	return registry
}
