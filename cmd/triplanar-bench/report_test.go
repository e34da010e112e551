package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/render/pipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3 * time.Millisecond, time.Millisecond, 2 * time.Millisecond}}
	s.Finalize()
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 3*time.Millisecond, s.Max)
	assert.Equal(t, 2*time.Millisecond, s.Avg)

	var empty Stats
	empty.Finalize()
	assert.Zero(t, empty.Avg)
}

func TestReportGenerate(t *testing.T) {
	r := &Report{
		Duration:     time.Second,
		Objects:      100,
		Depth:        4,
		Transparent:  0.25,
		Threads:      8,
		Sorting:      true,
		TotalUpdates: 120,
		TotalTime:    2 * time.Second,
		Render: pipe.RenderStats{
			Draws:     101,
			Triangles: 4000,
			Passes: []pipe.PassStats{
				{Name: "DrawTriplanar", Draws: 101, Triangles: 4000, Duration: time.Millisecond},
				{Name: "Broken", Err: errors.New("boom")},
			},
		},
		Systems: []ecs.SystemStats{{Name: "TransformSystem", ExecutionCount: 120}},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))
	out := buf.String()
	assert.Contains(t, out, "**Objects:** 100 (chains of 4, 25% transparent)")
	assert.Contains(t, out, "**Average FPS:** 60.0")
	assert.Contains(t, out, "- DrawTriplanar: 101 draws, 4000 triangles in 1ms")
	assert.Contains(t, out, "(error: boom)")
	assert.Contains(t, out, "- TransformSystem: avg 0s, max 0s over 120 runs")
	assert.NotContains(t, out, "GC Pause")
}
