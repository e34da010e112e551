package transform

import (
	"context"
	"log/slog"

	"github.com/plus3/facet/core"
	"github.com/plus3/facet/ecs"
)

type node struct {
	id     ecs.EntityId
	local  *Transform
	global *GlobalTransform
	parent int
	depth  int
}

// TransformSystem recomputes every GlobalTransform from the local
// Transforms, parents before children. Each depth level is computed in
// parallel on the ThreadPool resource when one is installed.
//
// A parent that is dead or has no transform makes the child a root. Cycles
// are logged and broken at the entity where they are found.
type TransformSystem struct {
	Entities ecs.Query[struct {
		*Transform
		*GlobalTransform
		Parent *Parent `ecs:"optional"`
	}]
	Pool ecs.Singleton[core.ThreadPool]

	Logger *slog.Logger

	nodes  []node
	index  map[ecs.EntityId]int
	levels [][]int

	// cycles holds the entities whose cycle was reported, so a cycle is
	// logged once until it is broken.
	cycles, seenCycles map[ecs.EntityId]bool
}

func (s *TransformSystem) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Execute implements ecs.System.
func (s *TransformSystem) Execute(frame *ecs.UpdateFrame) {
	s.collect(frame.Storage)
	s.resolveDepths()

	pool := core.ThreadPool{}
	if p := s.Pool.Get(); p != nil {
		pool = *p
	}

	ctx := frame.Context
	if ctx == nil {
		ctx = context.Background()
	}

	for _, level := range s.levels {
		err := pool.ForEach(ctx, len(level), func(lo, hi int) {
			for _, i := range level[lo:hi] {
				n := &s.nodes[i]
				m := n.local.Matrix()
				if n.parent >= 0 {
					m = s.nodes[n.parent].global.M.Mul4(m)
				}
				n.global.M = m
			}
		})
		if err != nil {
			s.logger().Warn("transform propagation interrupted", "err", err)
			return
		}
	}
}

func (s *TransformSystem) collect(storage *ecs.Storage) {
	s.nodes = s.nodes[:0]
	if s.index == nil {
		s.index = make(map[ecs.EntityId]int)
	}
	clear(s.index)

	parents := make([]ecs.EntityId, 0, s.Entities.Len())
	for id, item := range s.Entities.Iter() {
		var parent ecs.EntityId
		if item.Parent != nil {
			parent, _ = storage.ResolveEntityRef(item.Parent.Entity)
		}
		s.index[id] = len(s.nodes)
		s.nodes = append(s.nodes, node{
			id:     id,
			local:  item.Transform,
			global: item.GlobalTransform,
			parent: -1,
			depth:  -1,
		})
		parents = append(parents, parent)
	}

	for i, parent := range parents {
		if parent == 0 || parent == s.nodes[i].id {
			continue
		}
		if p, ok := s.index[parent]; ok {
			s.nodes[i].parent = p
		}
	}
}

// resolveDepths assigns hierarchy depths and buckets nodes by level.
func (s *TransformSystem) resolveDepths() {
	for i := range s.levels {
		s.levels[i] = s.levels[i][:0]
	}
	if s.seenCycles == nil {
		s.cycles = make(map[ecs.EntityId]bool)
		s.seenCycles = make(map[ecs.EntityId]bool)
	}
	clear(s.seenCycles)

	const visiting = -2
	var stack []int
	for i := range s.nodes {
		if s.nodes[i].depth >= 0 {
			continue
		}

		stack = append(stack[:0], i)
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			n := &s.nodes[top]

			if n.parent < 0 {
				n.depth = 0
				stack = stack[:len(stack)-1]
				continue
			}

			p := &s.nodes[n.parent]
			switch {
			case p.depth >= 0:
				n.depth = p.depth + 1
				stack = stack[:len(stack)-1]
			case p.depth == visiting:
				if !s.cycles[n.id] {
					s.logger().Warn("transform hierarchy cycle, treating entity as root", "entity", n.id)
				}
				s.seenCycles[n.id] = true
				n.parent = -1
				n.depth = 0
				stack = stack[:len(stack)-1]
			default:
				n.depth = visiting
				stack = append(stack, n.parent)
			}
		}
	}

	s.cycles, s.seenCycles = s.seenCycles, s.cycles

	for i := range s.nodes {
		d := s.nodes[i].depth
		for len(s.levels) <= d {
			s.levels = append(s.levels, nil)
		}
		s.levels[d] = append(s.levels[d], i)
	}

	for len(s.levels) > 0 && len(s.levels[len(s.levels)-1]) == 0 {
		s.levels = s.levels[:len(s.levels)-1]
	}
}

// Bundle installs the transform components and TransformSystem.
type Bundle struct {
	Logger *slog.Logger
}

// Build implements ecs.Bundle.
func (b Bundle) Build(world *ecs.World) error {
	ecs.Register[Transform](world)
	ecs.Register[GlobalTransform](world)
	ecs.Register[Parent](world)
	world.Scheduler.Register(&TransformSystem{Logger: b.Logger})
	return nil
}
