package gc

import "sync/atomic"

// scopeIDs mints a unique id per arena. The id is the runtime half of the
// branding scheme: the static half is the brand type parameter B.
var scopeIDs atomic.Uint64

// scope is the shared per-arena record every handle points back to.
type scope struct {
	id       uint64
	released bool

	liveObjects int    // Gc allocations with refs > 0
	liveCells   int    // cells created in this arena
	totalAllocs uint64 // cumulative Gc allocations
	totalFrees  uint64 // Gc allocations whose last reference was dropped
}

func (s *scope) panicIfReleased() {
	if s.released {
		panic("gc: use after arena Release()")
	}
}

// Arena is a scope token. Every Gc and RefCell is created through an arena
// and is only usable while that arena is alive. The brand type B ties
// handles to their arena in the type system: declare one empty struct type
// per scope and instantiate NewArena with it.
//
// An Arena is not goroutine-safe; confine it and everything allocated
// through it to a single goroutine.
type Arena[B any] struct {
	scope *scope
}

// NewArena creates a fresh arena with a scope distinct from every other
// live arena. Construction cannot fail.
func NewArena[B any]() *Arena[B] {
	return &Arena[B]{scope: &scope{id: scopeIDs.Add(1)}}
}

// Release ends the arena's scope. Every handle branded by this arena
// becomes inaccessible: any subsequent access through one panics.
// Releasing an already-released arena panics.
func (a *Arena[B]) Release() {
	a.scope.panicIfReleased()
	a.scope.released = true
}

// Released reports whether the arena's scope has ended.
func (a *Arena[B]) Released() bool {
	return a.scope.released
}
