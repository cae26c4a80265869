package debugui

import (
	"github.com/plus3/kestrel/ecs"
)

// Panel is implemented by debug window components. The DebugUISystem renders
// every component implementing it once per frame, holding an exclusive borrow
// of the panel while it draws.
type Panel interface {
	Render(ctx *Context)
}

// Context is shared by all panels of one DebugUISystem. Selected carries the
// entity picked in the browser over to the inspector; KindFilter carries the
// kind picked in the kind viewer over to the browser.
type Context struct {
	Entities   *ecs.Entities
	Scheduler  *ecs.Scheduler
	Selected   ecs.EntityId
	KindFilter string
	DeltaTime  float32
}

type EntityBrowser struct {
	ecs.Unique
	cache              *EntityBrowserCache
	filterText         string
	filterKind         string
	maxEntitiesPerPage int
	currentPage        int
}

type ComponentInspector struct {
	ecs.Unique
}

type KindViewer struct {
	ecs.Unique
	cache         *KindViewerCache
	selectedKind  string
	sortColumn    int
	sortAscending bool
}

type PerformanceStats struct {
	ecs.Unique
	history *FrameHistory
}

type QueryDebugger struct {
	ecs.Unique
	selectedKinds map[string]bool
}
