package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/kestrel/ecs"
)

type EntityInfo struct {
	ID             ecs.EntityId
	Kinds          []string
	ComponentCount int
}

type EntityBrowserCache struct {
	entities      []EntityInfo
	lastCount     int
	refreshFrames int
	sortColumn    int
	sortAscending bool
}

// entityBrowserRefresh is how many frames a cached listing is reused when
// the entity count has not changed.
const entityBrowserRefresh = 30

func NewEntityBrowser(maxEntitiesPerPage int) EntityBrowser {
	return EntityBrowser{
		cache: &EntityBrowserCache{
			sortColumn:    0,
			sortAscending: true,
		},
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

func (eb *EntityBrowser) Render(ctx *Context) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(ctx.Entities)
	if ctx.KindFilter != eb.filterKind {
		eb.FilterKind(ctx.KindFilter)
	}

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterKind = ""
		ctx.KindFilter = ""
	}
	if eb.filterKind != "" {
		imgui.Text(fmt.Sprintf("Kind: %s", eb.filterKind))
	}

	filteredEntities := filterEntities(eb.cache.entities, eb.filterText, eb.filterKind)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortEntities(eb.cache.entities, eb.cache.sortColumn, eb.cache.sortAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		startIdx, endIdx := pageBounds(len(filteredEntities), eb.currentPage, eb.maxEntitiesPerPage)

		for i := startIdx; i < endIdx; i++ {
			entity := filteredEntities[i]
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := ctx.Selected == entity.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", entity.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				ctx.Selected = entity.ID
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.Kinds, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ComponentCount))
		}

		imgui.EndTable()
	}

	if len(filteredEntities) > eb.maxEntitiesPerPage {
		totalPages := (len(filteredEntities) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filteredEntities)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		eb.currentPage = 0
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredEntities)))
	}

	imgui.End()
}

// FilterKind restricts the listing to entities holding the named kind.
func (eb *EntityBrowser) FilterKind(name string) {
	eb.filterKind = name
	eb.currentPage = 0
}

func (eb *EntityBrowser) rebuildCacheIfNeeded(entities *ecs.Entities) {
	eb.cache.refreshFrames++
	if eb.cache.entities != nil && eb.cache.lastCount == entities.Len() && eb.cache.refreshFrames < entityBrowserRefresh {
		return
	}

	eb.cache.entities = collectEntities(entities)
	eb.cache.lastCount = entities.Len()
	eb.cache.refreshFrames = 0
	sortEntities(eb.cache.entities, eb.cache.sortColumn, eb.cache.sortAscending)
}

func collectEntities(entities *ecs.Entities) []EntityInfo {
	infos := make([]EntityInfo, 0, entities.Len())

	for entity := range entities.Iter() {
		store := entity.Components()
		kinds := store.Kinds()
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.Name()
		}

		infos = append(infos, EntityInfo{
			ID:             entity.Id(),
			Kinds:          names,
			ComponentCount: store.Len(),
		})
	}

	return infos
}

func sortEntities(infos []EntityInfo, column int, ascending bool) {
	sort.SliceStable(infos, func(i, j int) bool {
		a, b := infos[i], infos[j]
		if !ascending {
			a, b = b, a
		}

		switch column {
		case 1:
			return strings.Join(a.Kinds, ",") < strings.Join(b.Kinds, ",")
		case 2:
			return a.ComponentCount < b.ComponentCount
		default:
			return a.ID < b.ID
		}
	})
}

func filterEntities(infos []EntityInfo, text, kind string) []EntityInfo {
	if text == "" && kind == "" {
		return infos
	}

	filtered := make([]EntityInfo, 0, len(infos))
	filterLower := strings.ToLower(text)

	for _, entity := range infos {
		if kind != "" && !containsString(entity.Kinds, kind) {
			continue
		}

		if text != "" {
			idStr := fmt.Sprintf("%d", entity.ID)
			kindsStr := strings.ToLower(strings.Join(entity.Kinds, " "))

			if !strings.Contains(idStr, filterLower) && !strings.Contains(kindsStr, filterLower) {
				continue
			}
		}

		filtered = append(filtered, entity)
	}

	return filtered
}

func pageBounds(total, page, perPage int) (int, int) {
	start := page * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
