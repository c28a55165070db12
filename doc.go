// Package gc implements an arena-scoped, reference-counted object model
// with a trace capability, intended as the foundation for a cycle-aware
// collector.
//
// # Overview
//
// Values are allocated through an arena and reached through Gc handles:
// shared, cloneable pointers whose validity is bounded by the arena that
// created them. Mutable state lives behind RefCell, a dynamically checked
// single-writer/multiple-reader cell. Every allocated type must satisfy
// the Traceable capability, the seam a future collector uses to discover
// cross-object references, including cycles that plain reference counting
// cannot reclaim.
//
// # Basic Usage
//
//	type session struct{} // brand: one empty struct type per scope
//
//	a := gc.NewArena[session]()
//	defer a.Release() // every handle becomes inaccessible here
//
//	// Allocate shared values
//	p := gc.Alloc(a, 42)
//	q := p.Clone()
//	fmt.Println(*q.Get(), p.PtrEq(q)) // 42 true
//
//	// Interior mutability with dynamic borrow checking
//	c := gc.NewCell(a, "hello")
//	r, err := c.Borrow()
//	if err != nil { ... } // gc.ErrBorrowConflict
//	defer r.Release()
//
// # Branding
//
// Each arena is parameterized by a brand type B, an empty struct the
// caller declares per scope. Handles carry the brand in their type:
// a Gc[session, T] cannot be assigned, compared, or stored where a
// Gc[request, T] is expected, so mixing pointers across differently
// branded arenas is rejected at compile time. Two arenas sharing a brand
// type are told apart at run time by a per-arena scope id; mixing them
// panics. Once an arena is released, every access through its handles
// panics.
//
// # Trace Capability
//
// Traceable is a marker: a type implementing it asserts that all managed
// references it holds are exposed to a future collector. Primitive
// numeric, boolean and string types are vacuously traceable; slices,
// arrays, pointers and maps are traceable when their elements are;
// a struct is traceable when every field is. Alloc and NewCell verify
// this composition rule at allocation time and panic on violation.
// For user aggregates the marker is derived mechanically by the tracegen
// tool (cmd/tracegen) rather than hand-written:
//
//	//go:generate go run github.com/eko-lang/eko-gc/cmd/tracegen -types Node,Graph -out trace_gen.go
//
// # Reference Counting
//
// Clone adds a reference, Release drops one; when the count reaches zero
// the storage is dead and the arena's live-object count goes down. Plain
// value copies of a handle do not add references: Clone is the only
// reference-adding operation. A cycle of Gc handles keeps every count in
// the cycle above zero, so cyclic storage is never released under this
// package alone; reclaiming it is the job of a collector built on the
// Traceable seam.
//
// # Thread Safety
//
// The object model is single-threaded by design. Reference counts and
// borrow states are plain integers; an arena and everything allocated
// through it must be confined to one goroutine. Independent goroutines
// may own independent arenas.
//
// # Metrics and Monitoring
//
// Arenas expose allocation statistics:
//
//	m := a.Metrics()
//	fmt.Printf("live objects: %d\n", m.LiveObjects)
//	fmt.Printf("total allocs: %d\n", m.TotalAllocs)
package gc
