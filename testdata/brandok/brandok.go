// Package brandok is the positive control for the negative compilation
// test: the same shapes as brandmismatch, with every handle used under its
// own brand. It must type-check cleanly.
package brandok

import gc "github.com/eko-lang/eko-gc"

type brandA struct{}

func wellBranded() {
	a := gc.NewArena[brandA]()
	defer a.Release()

	p := gc.Alloc(a, 1)
	q := gc.Alloc(a, 2)

	var kept gc.Gc[brandA, int] = p.Clone()
	_ = p.PtrEq(q)
	_ = gc.Equal(p, kept)

	var held []gc.Gc[brandA, int]
	held = append(held, q)
	_ = held

	var cell *gc.RefCell[brandA, int] = gc.NewCell(a, 4)
	_ = cell
}
