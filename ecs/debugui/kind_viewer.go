package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/kestrel/ecs"
)

type KindInfo struct {
	Name   string
	Unique bool
	Count  int
}

type KindViewerCache struct {
	kinds      []KindInfo
	maxCount   int
	registered int
}

func NewKindViewer() KindViewer {
	return KindViewer{
		cache:         &KindViewerCache{},
		sortColumn:    2,
		sortAscending: false,
	}
}

// Render lists every stored component kind with its instance count.
// Clicking a row filters the entity browser to that kind.
func (kv *KindViewer) Render(ctx *Context) {
	if !imgui.BeginV("Kind Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	kv.rebuild(ctx.Entities)
	imgui.Text(fmt.Sprintf("Registered kinds: %d", kv.cache.registered))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("KindTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Kind")
		imgui.TableSetupColumn("Unique")
		imgui.TableSetupColumn("Instances")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			kv.sortColumn = int(spec.ColumnIndex())
			kv.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortKinds(kv.cache.kinds, kv.sortColumn, kv.sortAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, kind := range kv.cache.kinds {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := kv.selectedKind == kind.Name
			if imgui.SelectableBoolV(kind.Name, isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				if isSelected {
					kv.selectedKind = ""
				} else {
					kv.selectedKind = kind.Name
				}
				ctx.KindFilter = kv.selectedKind
			}

			imgui.TableNextColumn()
			if kind.Unique {
				imgui.Text("yes")
			} else {
				imgui.Text("no")
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", kind.Count))

			if kv.cache.maxCount > 0 {
				barWidth := float32(kind.Count) / float32(kv.cache.maxCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
}

func (kv *KindViewer) rebuild(entities *ecs.Entities) {
	stats := entities.CollectStats()
	kv.cache.kinds = kindInfos(stats)
	kv.cache.registered = len(entities.Registry().Kinds())
	kv.cache.maxCount = 0
	for _, k := range kv.cache.kinds {
		kv.cache.maxCount = max(kv.cache.maxCount, k.Count)
	}
	sortKinds(kv.cache.kinds, kv.sortColumn, kv.sortAscending)
}

func kindInfos(stats *ecs.EntityStats) []KindInfo {
	infos := make([]KindInfo, len(stats.Kinds))
	for i, k := range stats.Kinds {
		infos[i] = KindInfo{Name: k.Name, Unique: k.Unique, Count: k.Count}
	}
	return infos
}

func sortKinds(kinds []KindInfo, column int, ascending bool) {
	sort.SliceStable(kinds, func(i, j int) bool {
		a, b := kinds[i], kinds[j]
		if !ascending {
			a, b = b, a
		}

		switch column {
		case 0:
			return a.Name < b.Name
		case 1:
			return !a.Unique && b.Unique
		default:
			return a.Count < b.Count
		}
	})
}
