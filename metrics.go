package gc

// LiveObjects returns the number of Gc allocations in the arena with at
// least one outstanding reference. Returns 0 after Release, when nothing
// in the arena is accessible any more.
func (a *Arena[B]) LiveObjects() int {
	if a.scope.released {
		return 0
	}
	return a.scope.liveObjects
}

// LiveCells returns the number of cells created in the arena.
// Returns 0 after Release.
func (a *Arena[B]) LiveCells() int {
	if a.scope.released {
		return 0
	}
	return a.scope.liveCells
}

// TotalAllocs returns the cumulative number of Gc allocations made through
// the arena, including ones since freed. Survives Release.
func (a *Arena[B]) TotalAllocs() uint64 {
	return a.scope.totalAllocs
}

// TotalFrees returns the number of Gc allocations whose last reference was
// dropped. Survives Release. A leaked cycle shows up as the gap between
// TotalAllocs and TotalFrees.
func (a *Arena[B]) TotalFrees() uint64 {
	return a.scope.totalFrees
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena[B]) Metrics() ArenaMetrics {
	return ArenaMetrics{
		LiveObjects: a.LiveObjects(),
		LiveCells:   a.LiveCells(),
		TotalAllocs: a.TotalAllocs(),
		TotalFrees:  a.TotalFrees(),
		Released:    a.Released(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	LiveObjects int    // allocations with refs > 0 (0 once released)
	LiveCells   int    // cells created in the arena (0 once released)
	TotalAllocs uint64 // cumulative allocations
	TotalFrees  uint64 // allocations fully released
	Released    bool   // the arena scope has ended
}
