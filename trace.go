package gc

import (
	"fmt"
	"reflect"
	"sync"
)

// Traceable marks a type as safe for reference discovery. Implementing it
// asserts that every managed reference (Gc handle or cell) reachable from
// a value of the type is exposed to a future collector. The traversal hook
// itself is deliberately unspecified here; the marker is the contract every
// allocated type must already satisfy so that a collector can be layered on
// later.
//
// Implementing Traceable by hand is as dangerous as any unsafe assertion:
// a type that hides a reference it holds would let a collector free memory
// still reachable from live code. Prefer the tracegen generator, which
// refuses to emit the marker for a type with a non-traceable field.
type Traceable interface {
	// Traceable does nothing at run time. It exists only so the capability
	// can be declared and checked.
	Traceable()
}

var traceableIface = reflect.TypeOf((*Traceable)(nil)).Elem()

// Per-type traceability verdicts. Arenas are single-goroutine, but
// independent arenas on separate goroutines share this cache, so it is
// mutex-guarded.
var (
	traceMu   sync.Mutex
	traceMemo = map[reflect.Type]bool{}
)

// mustBeTraceable panics unless T satisfies the trace capability. It is the
// allocation-time stand-in for a trait bound: Alloc and NewCell call it
// before handing out a handle.
func mustBeTraceable[T any]() {
	t := reflect.TypeOf((*T)(nil)).Elem()
	traceMu.Lock()
	v, ok := traceMemo[t]
	if !ok {
		v = traceWalk(t, map[reflect.Type]bool{})
		traceMemo[t] = v
	}
	traceMu.Unlock()
	if !v {
		panic(fmt.Sprintf("gc: %s is not traceable", t))
	}
}

// traceWalk is the composition rule: a type is traceable when it declares
// the capability, or when it is built entirely from traceable parts.
// Channels, funcs, plain interfaces, uintptr and unsafe.Pointer can hide
// references the walk cannot see, so they never qualify.
//
// visiting holds the types whose checks are in flight; a type reached again
// through one of its own fields is admitted, which makes recursive types
// terminate. Verdicts reached under such an admission may be revised before
// the walk finishes, so only the finished top-level verdict is memoized.
// Caller holds traceMu.
func traceWalk(t reflect.Type, visiting map[reflect.Type]bool) bool {
	if v, ok := traceMemo[t]; ok {
		return v
	}
	if visiting[t] {
		return true
	}
	visiting[t] = true
	defer delete(visiting, t)

	if t.Implements(traceableIface) {
		return true
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(traceableIface) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	case reflect.Slice, reflect.Array, reflect.Pointer:
		return traceWalk(t.Elem(), visiting)
	case reflect.Map:
		return traceWalk(t.Key(), visiting) && traceWalk(t.Elem(), visiting)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !traceWalk(t.Field(i).Type, visiting) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
