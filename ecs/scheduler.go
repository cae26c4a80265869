package ecs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Phase          Phase
	ExecutionCount int64
	InputCount     int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	inputCount     int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (s *systemStatsInternal) record(duration time.Duration) {
	s.executionCount++
	s.lastDuration = duration
	s.totalDuration += duration

	if duration < s.minDuration {
		s.minDuration = duration
	}
	if duration > s.maxDuration {
		s.maxDuration = duration
	}
}

type registeredSystem struct {
	system SystemInterface
	phase  Phase
	logger zerolog.Logger
	stats  *systemStatsInternal
}

// Scheduler runs registered systems phase by phase, in registration order.
type Scheduler struct {
	entities *Entities
	phases   [2][]*registeredSystem
	commands *Commands
	logger   zerolog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the logger. Each system receives a sub-logger
// tagged with its name on UpdateFrame.Logger.
func WithSchedulerLogger(logger zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a scheduler driving the given entities.
func NewScheduler(entities *Entities, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		entities: entities,
		commands: newCommands(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Entities returns the registry the scheduler drives.
func (s *Scheduler) Entities() *Entities {
	return s.entities
}

// Register type-erases system and appends it to phase.
func Register[Q Query](s *Scheduler, phase Phase, system System[Q]) {
	s.RegisterErased(phase, Erase(system))
}

// RegisterErased appends an already erased system to phase.
func (s *Scheduler) RegisterErased(phase Phase, system SystemInterface) {
	if phase != PhaseUpdate && phase != PhaseRender {
		panic("ecs: systems can only be registered into the update or render phase")
	}
	if phase == PhaseRender && system.HandlesInput() {
		panic("ecs: system " + system.Name() + " handles input and must be registered into the update phase")
	}

	s.phases[phase] = append(s.phases[phase], &registeredSystem{
		system: system,
		phase:  phase,
		logger: s.logger.With().Str("system", system.Name()).Str("phase", phase.String()).Logger(),
		stats: &systemStatsInternal{
			minDuration: time.Duration(1<<63 - 1),
		},
	})

	s.logger.Debug().
		Str("system", system.Name()).
		Str("phase", phase.String()).
		Msg("system registered")
}

// Setup hands the application state to every system once, update phase first.
func (s *Scheduler) Setup(state *AppState) {
	for _, phase := range s.phases {
		for _, rs := range phase {
			rs.system.Setup(state)
		}
	}
}

// Input dispatches one device event to every update-phase system that
// handles input.
func (s *Scheduler) Input(event InputEvent, state *AppState) {
	for _, rs := range s.phases[PhaseUpdate] {
		if !rs.system.HandlesInput() {
			continue
		}
		frame := s.newFrame(0, PhaseInput, state, rs)
		rs.system.Input(frame, event, s.entities)
		rs.stats.inputCount++
	}
	s.commands.Flush(s.entities)
}

// Update runs the update phase.
func (s *Scheduler) Update(dt float64, state *AppState) {
	s.RunPhase(PhaseUpdate, dt, state)
	if state != nil && state.Clock != nil {
		state.Clock.frames++
	}
}

// Render runs the render phase.
func (s *Scheduler) Render(dt float64, state *AppState) {
	s.RunPhase(PhaseRender, dt, state)
}

// RunPhase runs every system of phase once, each with a freshly captured
// query, then flushes queued commands. Borrow conflicts raised by systems are
// not recovered.
func (s *Scheduler) RunPhase(phase Phase, dt float64, state *AppState) {
	for _, rs := range s.phases[phase] {
		frame := s.newFrame(dt, phase, state, rs)

		start := time.Now()
		rs.system.Run(frame, s.entities)
		rs.stats.record(time.Since(start))
	}

	s.commands.Flush(s.entities)
}

// Once runs the update phase followed by the render phase.
func (s *Scheduler) Once(dt float64, state *AppState) {
	s.Update(dt, state)
	s.Render(dt, state)
}

// Run executes Once repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, state *AppState) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt, state)
		}
	}
}

func (s *Scheduler) newFrame(dt float64, phase Phase, state *AppState, rs *registeredSystem) *UpdateFrame {
	frame := newUpdateFrame(dt, phase, state, s.entities, s.commands)
	frame.Logger = rs.logger
	return frame
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{}

	var totalExecs int64
	for _, phase := range s.phases {
		for _, rs := range phase {
			internal := rs.stats
			avgDuration := time.Duration(0)
			minDuration := internal.minDuration
			if internal.executionCount > 0 {
				avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
			} else {
				minDuration = 0
			}

			stats.Systems = append(stats.Systems, SystemStats{
				Name:           rs.system.Name(),
				Phase:          rs.phase,
				ExecutionCount: internal.executionCount,
				InputCount:     internal.inputCount,
				MinDuration:    minDuration,
				MaxDuration:    internal.maxDuration,
				AvgDuration:    avgDuration,
				LastDuration:   internal.lastDuration,
				TotalDuration:  internal.totalDuration,
			})
			totalExecs += internal.executionCount
		}
	}

	stats.SystemCount = len(stats.Systems)
	stats.TotalExecutions = totalExecs
	return stats
}

// FrameLoop adapts the scheduler to an event loop that reports device
// events, "main events cleared" and "redraw requested".
type FrameLoop struct {
	scheduler *Scheduler
	state     *AppState
}

// Bind creates a FrameLoop driving the scheduler with the given state and
// runs system setup.
func (s *Scheduler) Bind(state *AppState) *FrameLoop {
	s.Setup(state)
	return &FrameLoop{scheduler: s, state: state}
}

// State returns the bound application state.
func (l *FrameLoop) State() *AppState {
	return l.state
}

// DeviceEvent dispatches one input event.
func (l *FrameLoop) DeviceEvent(event InputEvent) {
	l.scheduler.Input(event, l.state)
}

// MainEventsCleared runs the update phase with the time since the last update.
func (l *FrameLoop) MainEventsCleared(dt time.Duration) {
	l.scheduler.Update(dt.Seconds(), l.state)
}

// RedrawRequested runs the render phase with the time since the last render.
func (l *FrameLoop) RedrawRequested(dt time.Duration) {
	l.scheduler.Render(dt.Seconds(), l.state)
}
