package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
)

// FrameHistory is a ring buffer of frame times in milliseconds.
type FrameHistory struct {
	frames []float32
	index  int
	filled int
}

func NewFrameHistory(size int) *FrameHistory {
	return &FrameHistory{frames: make([]float32, size)}
}

// Record stores one frame time given in seconds.
func (h *FrameHistory) Record(deltaTime float32) {
	h.frames[h.index] = deltaTime * 1000.0
	h.index = (h.index + 1) % len(h.frames)
	h.filled = min(h.filled+1, len(h.frames))
}

// Average returns the mean of the recorded frame times in milliseconds.
func (h *FrameHistory) Average() float32 {
	if h.filled == 0 {
		return 0
	}
	var total float32
	for _, ft := range h.frames[:h.filled] {
		total += ft
	}
	return total / float32(h.filled)
}

func NewPerformanceStats(historyFrames int) PerformanceStats {
	return PerformanceStats{
		history: NewFrameHistory(historyFrames),
	}
}

func (ps *PerformanceStats) Render(ctx *Context) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.history.Record(ctx.DeltaTime)

	stats := ctx.Entities.CollectStats()

	imgui.Text(fmt.Sprintf("Total Entities: %d", stats.EntityCount))
	imgui.Text(fmt.Sprintf("Unique Components: %d", stats.UniqueComponents))
	imgui.Text(fmt.Sprintf("Regular Components: %d", stats.RegularComponents))

	avgFrameTime := ps.history.Average()
	fps := float32(0)
	if avgFrameTime > 0 {
		fps = 1000.0 / avgFrameTime
	}
	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, fps))

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.history.frames[0], int32(len(ps.history.frames)))

	if ctx.Scheduler != nil && imgui.TreeNodeStr("Systems") {
		schedulerStats := ctx.Scheduler.GetStats()

		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Phase")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, system := range schedulerStats.Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(system.Name)
				imgui.TableNextColumn()
				imgui.Text(system.Phase.String())
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", system.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(system.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(system.MaxDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Kind Details") {
		for _, kind := range stats.Kinds {
			imgui.BulletText(fmt.Sprintf("%s: %d", kind.Name, kind.Count))
		}
		imgui.TreePop()
	}

	imgui.End()
}
