package debugui

import "github.com/plus3/kestrel/ecs"

// SpawnDebugUI spawns one entity per debug window.
func SpawnDebugUI(entities *ecs.Entities) []ecs.EntityId {
	return []ecs.EntityId{
		entities.Spawn(NewEntityBrowser(100)),
		entities.Spawn(NewComponentInspector()),
		entities.Spawn(NewKindViewer()),
		entities.Spawn(NewPerformanceStats(120)),
		entities.Spawn(NewQueryDebugger()),
		entities.Spawn(ImguiInputState{}),
	}
}

// RegisterDebugUIComponents registers the debug UI component types, for
// applications using a strict component registry.
func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[EntityBrowser](registry)
	ecs.RegisterComponent[ComponentInspector](registry)
	ecs.RegisterComponent[KindViewer](registry)
	ecs.RegisterComponent[PerformanceStats](registry)
	ecs.RegisterComponent[QueryDebugger](registry)
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[ImguiInputState](registry)
}

// RegisterDebugUI adds the panel and ImguiItem systems to the update phase.
// They must run between the ImGui backend's BeginFrame and EndFrame.
func RegisterDebugUI(scheduler *ecs.Scheduler) *DebugUISystem {
	system := NewDebugUISystem(scheduler)
	ecs.Register(scheduler, ecs.PhaseUpdate, system)
	ecs.Register(scheduler, ecs.PhaseUpdate, &ImguiSystem{})
	return system
}

// DebugUISystem renders every Panel component.
type DebugUISystem struct {
	ctx Context
}

func NewDebugUISystem(scheduler *ecs.Scheduler) *DebugUISystem {
	return &DebugUISystem{
		ctx: Context{
			Entities:  scheduler.Entities(),
			Scheduler: scheduler,
		},
	}
}

func (s *DebugUISystem) NewQuery() *ecs.FilterQuery {
	return ecs.NewFilterQuery(ecs.Implementing[Panel]())
}

func (s *DebugUISystem) Run(frame *ecs.UpdateFrame, q *ecs.FilterQuery) {
	s.ctx.DeltaTime = float32(frame.DeltaTime)
	if s.ctx.Selected.Valid() && !s.ctx.Entities.Contains(s.ctx.Selected) {
		s.ctx.Selected = ecs.NoEntity
	}

	for _, ref := range q.Iter() {
		ref.Write(func(c ecs.Component) {
			c.(Panel).Render(&s.ctx)
		})
	}
}

// Selected returns the entity currently picked in the browser.
func (s *DebugUISystem) Selected() ecs.EntityId {
	return s.ctx.Selected
}

// Select picks an entity as if it had been clicked in the browser.
func (s *DebugUISystem) Select(id ecs.EntityId) {
	s.ctx.Selected = id
}
