package gc

import (
	"cmp"
	"fmt"
	"hash/maphash"
)

// box is the shared storage behind a Gc handle.
type box[T any] struct {
	scope *scope
	refs  int
	value T
}

// Gc is a shared, reference-counted handle to a T allocated through an
// arena with brand B. Handles are small comparable values (identity
// semantics under ==) and may be stored in ordinary containers or used as
// map keys. Copying a handle does not add a reference; Clone does.
//
// The zero Gc holds no storage; any access through it panics.
type Gc[B any, T any] struct {
	box *box[T]
}

// Alloc allocates value on the heap with a reference count of one and
// returns a handle branded by a's scope. T must satisfy the trace
// capability; Alloc panics otherwise. Allocation itself cannot fail short
// of the process running out of memory.
func Alloc[B, T any](a *Arena[B], value T) Gc[B, T] {
	a.scope.panicIfReleased()
	mustBeTraceable[T]()
	a.scope.liveObjects++
	a.scope.totalAllocs++
	return Gc[B, T]{box: &box[T]{scope: a.scope, refs: 1, value: value}}
}

// access returns the live box behind g, panicking on zero handles,
// released arenas and storage whose last reference was already dropped.
func (g Gc[B, T]) access() *box[T] {
	if g.box == nil {
		panic("gc: use of zero Gc handle")
	}
	g.box.scope.panicIfReleased()
	if g.box.refs == 0 {
		panic("gc: use after last reference was released")
	}
	return g.box
}

// Clone adds a reference and returns a new handle aliasing the same
// storage. O(1), never fails.
func (g Gc[B, T]) Clone() Gc[B, T] {
	b := g.access()
	b.refs++
	return Gc[B, T]{box: b}
}

// Get returns a shared view of the pointee. The pointee is alive as long
// as any reference to it remains; mutate it only through a nested cell.
func (g Gc[B, T]) Get() *T {
	return &g.access().value
}

// Release drops one reference. When the count reaches zero the storage is
// dead: the arena's live-object count goes down and any later access
// through a handle to it panics. Dropping more references than were taken
// panics.
//
// Release is shallow: handles held inside the pointee are not released
// with it and must be released by whoever owns the enclosing value.
//
// A cycle of handles keeps every count in the cycle above zero, so cyclic
// storage is never freed by Release alone.
func (g Gc[B, T]) Release() {
	b := g.access()
	b.refs--
	if b.refs == 0 {
		b.scope.liveObjects--
		b.scope.totalFrees++
	}
}

// Refs returns the current reference count of the storage behind g.
func (g Gc[B, T]) Refs() int {
	return g.access().refs
}

// PtrEq reports whether g and other alias the same storage, regardless of
// the pointee's value. This is the only identity-based comparison the
// package exposes; Equal, Compare and Less forward to the pointee.
func (g Gc[B, T]) PtrEq(other Gc[B, T]) bool {
	b, o := g.access(), other.access()
	sameScope(b.scope, o.scope)
	return b == o
}

// String renders the pointee for diagnostics. It never panics: dead or
// unbranded handles render as placeholders.
func (g Gc[B, T]) String() string {
	if g.box == nil {
		return "Gc(<nil>)"
	}
	if g.box.scope.released || g.box.refs == 0 {
		return "Gc(<released>)"
	}
	return fmt.Sprintf("Gc(%v)", g.box.value)
}

// Traceable marks Gc itself as traceable: a handle is exactly the kind of
// reference a collector must discover.
func (Gc[B, T]) Traceable() {}

// sameScope panics when two handles of the same brand type come from
// different arena instances. Cross-brand mixing never reaches here; the
// type system rejects it.
func sameScope(x, y *scope) {
	if x != y {
		panic("gc: cross-arena pointer operation")
	}
}

// Equal reports whether the pointees of x and y are equal. Two distinct
// allocations holding equal values are Equal but not PtrEq.
func Equal[B any, T comparable](x, y Gc[B, T]) bool {
	bx, by := x.access(), y.access()
	sameScope(bx.scope, by.scope)
	return bx.value == by.value
}

// Compare orders x and y by their pointees.
func Compare[B any, T cmp.Ordered](x, y Gc[B, T]) int {
	bx, by := x.access(), y.access()
	sameScope(bx.scope, by.scope)
	return cmp.Compare(bx.value, by.value)
}

// Less reports whether x's pointee orders before y's.
func Less[B any, T cmp.Ordered](x, y Gc[B, T]) bool {
	return Compare(x, y) < 0
}

// Hash hashes the pointee, not the handle, so equal-valued allocations
// hash alike under the same seed.
func Hash[B any, T comparable](seed maphash.Seed, g Gc[B, T]) uint64 {
	return maphash.Comparable(seed, g.access().value)
}
