// Package brandmismatch must NOT type-check. It mixes handles from two
// differently branded arenas; every mixing site below is expected to be a
// type error. The gc package's negative compilation test loads this
// package and asserts the rejections.
package brandmismatch

import gc "github.com/eko-lang/eko-gc"

type brandA struct{}
type brandB struct{}

func mix() {
	a := gc.NewArena[brandA]()
	b := gc.NewArena[brandB]()

	p := gc.Alloc(a, 1)
	q := gc.Alloc(b, 2)

	// A handle branded by b cannot be held where brand a is expected.
	var smuggled gc.Gc[brandA, int] = gc.Alloc(b, 3)
	_ = smuggled

	// Handles of different brands cannot be compared, by identity or value.
	_ = p.PtrEq(q)
	_ = gc.Equal(p, q)

	// Nor stored in a container of the other brand.
	var held []gc.Gc[brandA, int]
	held = append(held, q)
	_ = held

	// Cells are branded the same way.
	var cell *gc.RefCell[brandA, int] = gc.NewCell(b, 4)
	_ = cell
}
