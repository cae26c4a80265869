package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/kestrel/ecs"
)

func NewQueryDebugger() QueryDebugger {
	return QueryDebugger{
		selectedKinds: make(map[string]bool),
	}
}

// Render lets the user tick component kinds and lists the entities holding
// all of them.
func (qd *QueryDebugger) Render(ctx *Context) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selectedKinds = make(map[string]bool)
	}

	registry := ctx.Entities.Registry()
	for _, kind := range registry.Kinds() {
		name := kind.Name()
		selected := qd.selectedKinds[name]
		if imgui.Checkbox(name, &selected) {
			if selected {
				qd.selectedKinds[name] = true
			} else {
				delete(qd.selectedKinds, name)
			}
		}
	}

	imgui.Separator()

	selectedTypes := make([]reflect.Type, 0, len(qd.selectedKinds))
	for name := range qd.selectedKinds {
		if kind, ok := registry.Lookup(name); ok {
			selectedTypes = append(selectedTypes, kind.Type)
		}
	}

	if len(selectedTypes) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matches := matchEntities(ctx.Entities, selectedTypes)
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))

	if imgui.TreeNodeStr("Matches") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryMatchTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Entity ID")
			imgui.TableSetupColumn("Matched Components")
			imgui.TableHeadersRow()

			for _, match := range matches {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				if imgui.SelectableBoolV(fmt.Sprintf("%d", match.ID), ctx.Selected == match.ID, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
					ctx.Selected = match.ID
				}

				imgui.TableSetColumnIndex(1)
				imgui.Text(fmt.Sprintf("%d", match.Components))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

type QueryMatch struct {
	ID         ecs.EntityId
	Components int
}

// matchEntities runs a filter query over the given kinds and keeps the
// entities that hold at least one instance of every kind.
func matchEntities(entities *ecs.Entities, required []reflect.Type) []QueryMatch {
	q := ecs.NewFilterQuery(ecs.OfKinds(required...))
	ecs.Capture(q, entities)

	seen := make(map[ecs.EntityId]map[reflect.Type]bool)
	counts := make(map[ecs.EntityId]int)
	var order []ecs.EntityId

	for id, ref := range q.Iter() {
		kinds, ok := seen[id]
		if !ok {
			kinds = make(map[reflect.Type]bool)
			seen[id] = kinds
			order = append(order, id)
		}
		kinds[ref.Kind().Type] = true
		counts[id]++
	}

	matches := make([]QueryMatch, 0, len(order))
	for _, id := range order {
		if len(seen[id]) == len(required) {
			matches = append(matches, QueryMatch{ID: id, Components: counts[id]})
		}
	}
	return matches
}
