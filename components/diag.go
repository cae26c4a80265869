package components

import "github.com/plus3/kestrel/ecs"

// Diag is a diagnostics counter, usually attached to a single entity.
type Diag struct {
	ecs.Unique
	FPS      float64
	Frames   uint64
	Entities int
	Elapsed  float64
}

// DiagSystem keeps the first Diag in the world up to date. Smoothing is the
// weight given to the previous FPS value; zero means no smoothing.
type DiagSystem struct {
	Smoothing float64
}

func (s *DiagSystem) NewQuery() *ecs.UnitQuery[Diag] {
	return ecs.NewUnitQuery[Diag]()
}

func (s *DiagSystem) Run(frame *ecs.UpdateFrame, query *ecs.UnitQuery[Diag]) {
	ref, ok := query.Get()
	if !ok {
		return
	}

	ref.Write(func(d *Diag) {
		d.Frames++
		d.Elapsed += frame.DeltaTime
		d.Entities = frame.Entities.Len()

		if frame.DeltaTime <= 0 {
			return
		}
		fps := 1 / frame.DeltaTime
		if d.Frames == 1 || s.Smoothing <= 0 {
			d.FPS = fps
			return
		}
		d.FPS = d.FPS*s.Smoothing + fps*(1-s.Smoothing)
	})
}
