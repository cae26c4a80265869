package ecs

import "sort"

// KindStats counts stored instances of one component type.
type KindStats struct {
	Name   string
	Unique bool
	Count  int
}

// EntityStats summarises the contents of an Entities registry.
type EntityStats struct {
	EntityCount       int
	UniqueComponents  int
	RegularComponents int
	Kinds             []KindStats
}

// CollectStats walks every entity and counts its components.
func (e *Entities) CollectStats() *EntityStats {
	stats := &EntityStats{}
	counts := make(map[string]*KindStats)

	for entity := range e.Iter() {
		stats.EntityCount++
		store := entity.Components()
		stats.UniqueComponents += store.UniqueCount()
		stats.RegularComponents += store.Count()

		for s := range store.iterSlots() {
			name := s.kind.Name()
			ks, ok := counts[name]
			if !ok {
				ks = &KindStats{Name: name, Unique: s.kind.Unique}
				counts[name] = ks
			}
			ks.Count++
		}
	}

	stats.Kinds = make([]KindStats, 0, len(counts))
	for _, ks := range counts {
		stats.Kinds = append(stats.Kinds, *ks)
	}
	sort.Slice(stats.Kinds, func(i, j int) bool {
		return stats.Kinds[i].Name < stats.Kinds[j].Name
	})

	return stats
}
