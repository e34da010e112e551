package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/facet/core"
	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/render"
	"github.com/plus3/facet/render/pipe"
)

// frameHistory is a ring of frame times in milliseconds.
type frameHistory struct {
	samples []float32
	next    int
	filled  int
}

func newFrameHistory(n int) *frameHistory {
	return &frameHistory{samples: make([]float32, max(n, 1))}
}

func (h *frameHistory) push(d time.Duration) {
	h.samples[h.next] = float32(d.Seconds() * 1000)
	h.next = (h.next + 1) % len(h.samples)
	h.filled = min(h.filled+1, len(h.samples))
}

// average returns the mean of the recorded samples, zero when empty.
func (h *frameHistory) average() float32 {
	if h.filled == 0 {
		return 0
	}
	var sum float32
	for _, s := range h.samples[:h.filled] {
		sum += s
	}
	return sum / float32(h.filled)
}

// FrameStatsWindow shows frame times from the Time resource, storage
// counts and per-system timings.
type FrameStatsWindow struct {
	Storage   *ecs.Storage
	Scheduler *ecs.Scheduler
	history   *frameHistory
}

// NewFrameStatsWindow keeps historyFrames frame times.
func NewFrameStatsWindow(world *ecs.World, historyFrames int) *FrameStatsWindow {
	return &FrameStatsWindow{
		Storage:   world.Storage,
		Scheduler: world.Scheduler,
		history:   newFrameHistory(historyFrames),
	}
}

// Render draws the window. Call it from an ImguiItem.
func (w *FrameStatsWindow) Render() {
	var clock *core.Time
	if w.Storage.ReadSingleton(&clock) {
		w.history.push(clock.DeltaRealTime())
	}

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	if !imgui.BeginV("Frame Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := w.Storage.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d", stats.TotalEntityCount))
	imgui.Text(fmt.Sprintf("Archetypes: %d", stats.ArchetypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))

	if avg := w.history.average(); avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000/avg))
	}
	if clock != nil {
		imgui.Text(fmt.Sprintf("Frame %d, %.1f s, scale %.2f", clock.FrameNumber(), clock.AbsoluteTimeSeconds(), clock.TimeScale()))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &w.history.samples[0], int32(len(w.history.samples)))

	if w.Scheduler != nil && imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableHeadersRow()

			for _, s := range w.Scheduler.GetStats().Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(s.Name)
				imgui.TableNextColumn()
				imgui.Text(s.LastDuration.String())
				imgui.TableNextColumn()
				imgui.Text(s.AvgDuration.String())
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

// RenderStatsWindow shows the RenderStats and Visibility resources.
type RenderStatsWindow struct {
	Storage *ecs.Storage
}

// Render draws the window. Call it from an ImguiItem.
func (w *RenderStatsWindow) Render() {
	var stats *pipe.RenderStats
	if !w.Storage.ReadSingleton(&stats) {
		return
	}

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 300), imgui.CondOnce, imgui.NewVec2(0, 0))
	if !imgui.BeginV("Render Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Draws: %d", stats.Draws))
	imgui.Text(fmt.Sprintf("Triangles: %d", stats.Triangles))

	var vis *render.Visibility
	if w.Storage.ReadSingleton(&vis) && vis.VisibleUnordered != nil {
		imgui.Text(fmt.Sprintf("Visible: %d opaque, %d ordered", vis.VisibleUnordered.Len(), len(vis.VisibleOrdered)))
	}

	imgui.Separator()
	for _, ps := range stats.Passes {
		label := fmt.Sprintf("%s: %d draws, %s", ps.Name, ps.Draws, ps.Duration)
		if ps.Err != nil {
			imgui.TextColored(imgui.NewVec4(1, 0.4, 0.4, 1), label)
			imgui.Text(ps.Err.Error())
			continue
		}
		imgui.Text(label)
	}

	imgui.End()
}

// Bundle installs ImguiSystem plus the frame and render stats windows.
type Bundle struct {
	// HistoryFrames is the length of the frame time graph.
	HistoryFrames int
}

// Build implements ecs.Bundle.
func (b Bundle) Build(world *ecs.World) error {
	ecs.Register[ImguiItem](world)
	ecs.Insert(world, ImguiInputState{})

	frames := NewFrameStatsWindow(world, max(b.HistoryFrames, 60))
	renders := &RenderStatsWindow{Storage: world.Storage}
	world.Storage.Spawn(ImguiItem{Render: frames.Render})
	world.Storage.Spawn(ImguiItem{Render: renders.Render})

	world.Scheduler.Register(&ImguiSystem{})
	return nil
}
