package gc

import (
	"errors"
	"testing"
)

type cellScope struct{}

func TestBorrowMutConflictsWithBorrow(t *testing.T) {
	a := NewArena[cellScope]()
	defer a.Release()

	c := NewCell(a, 0)

	r, err := c.Borrow()
	if err != nil {
		t.Fatalf("Borrow() error: %v", err)
	}

	if _, err := c.BorrowMut(); !errors.Is(err, ErrBorrowConflict) {
		t.Errorf("BorrowMut() during shared borrow: err = %v, want ErrBorrowConflict", err)
	}

	// The conflict is recoverable: drop the guard and retry.
	r.Release()
	m, err := c.BorrowMut()
	if err != nil {
		t.Fatalf("BorrowMut() after guard release: %v", err)
	}
	m.Release()
}

func TestBorrowConflictsWithBorrowMut(t *testing.T) {
	a := NewArena[cellScope]()
	defer a.Release()

	c := NewCell(a, 0)

	m, err := c.BorrowMut()
	if err != nil {
		t.Fatalf("BorrowMut() error: %v", err)
	}

	if _, err := c.Borrow(); !errors.Is(err, ErrBorrowConflict) {
		t.Errorf("Borrow() during exclusive borrow: err = %v, want ErrBorrowConflict", err)
	}
	if _, err := c.BorrowMut(); !errors.Is(err, ErrBorrowConflict) {
		t.Errorf("second BorrowMut(): err = %v, want ErrBorrowConflict", err)
	}

	m.Release()
	r, err := c.Borrow()
	if err != nil {
		t.Fatalf("Borrow() after guard release: %v", err)
	}
	r.Release()
}

func TestSharedBorrowsOverlap(t *testing.T) {
	a := NewArena[cellScope]()
	defer a.Release()

	c := NewCell(a, 7)

	r1, err := c.Borrow()
	if err != nil {
		t.Fatalf("first Borrow() error: %v", err)
	}
	r2, err := c.Borrow()
	if err != nil {
		t.Fatalf("second Borrow() error: %v", err)
	}

	if r1.Value() != 7 || r2.Value() != 7 {
		t.Errorf("shared borrows read %d and %d, want 7 and 7", r1.Value(), r2.Value())
	}

	// Exclusive access only once both shared guards are gone.
	r1.Release()
	if _, err := c.BorrowMut(); !errors.Is(err, ErrBorrowConflict) {
		t.Errorf("BorrowMut() with one shared borrow left: err = %v, want ErrBorrowConflict", err)
	}
	r2.Release()
	m, err := c.BorrowMut()
	if err != nil {
		t.Fatalf("BorrowMut() after all shared guards released: %v", err)
	}
	m.Release()
}

func TestMutationThroughGuard(t *testing.T) {
	a := NewArena[cellScope]()
	defer a.Release()

	c := NewCell(a, 1)

	m, err := c.BorrowMut()
	if err != nil {
		t.Fatalf("BorrowMut() error: %v", err)
	}
	*m.Get() += 10
	m.Set(*m.Get() * 2)
	m.Release()

	r, err := c.Borrow()
	if err != nil {
		t.Fatalf("Borrow() error: %v", err)
	}
	defer r.Release()
	if got := r.Value(); got != 22 {
		t.Errorf("cell reads %d after mutation, want 22", got)
	}
}

func TestGuardReleaseIdempotent(t *testing.T) {
	a := NewArena[cellScope]()
	defer a.Release()

	c := NewCell(a, 0)

	r, _ := c.Borrow()
	r.Release()
	r.Release() // no-op, must not unbalance the borrow state

	m, err := c.BorrowMut()
	if err != nil {
		t.Fatalf("BorrowMut() after double shared release: %v", err)
	}
	m.Release()
	m.Release()

	if c.borrow != 0 {
		t.Errorf("borrow state = %d after balanced releases, want 0", c.borrow)
	}
}

func TestGuardReleasedOnEarlyReturn(t *testing.T) {
	a := NewArena[cellScope]()
	defer a.Release()

	c := NewCell(a, 0)

	// Deferred release runs on every exit path, including panic unwinding.
	func() {
		defer func() { recover() }()
		m, err := c.BorrowMut()
		if err != nil {
			t.Fatalf("BorrowMut() error: %v", err)
		}
		defer m.Release()
		panic("mid-borrow failure")
	}()

	if _, err := c.BorrowMut(); err != nil {
		t.Errorf("BorrowMut() after unwound borrow: %v, want success", err)
	}
}

func TestUseOfReleasedGuardPanics(t *testing.T) {
	a := NewArena[cellScope]()
	defer a.Release()

	c := NewCell(a, 0)

	t.Run("shared", func(t *testing.T) {
		r, _ := c.Borrow()
		r.Release()
		defer func() {
			if recover() == nil {
				t.Error("Value() on released guard did not panic")
			}
		}()
		r.Value()
	})

	t.Run("exclusive", func(t *testing.T) {
		m, _ := c.BorrowMut()
		m.Release()
		defer func() {
			if recover() == nil {
				t.Error("Get() on released guard did not panic")
			}
		}()
		m.Get()
	})
}

func TestCellStringWhileBorrowed(t *testing.T) {
	a := NewArena[cellScope]()
	defer a.Release()

	c := NewCell(a, 42)

	if got := c.String(); got != "RefCell(42)" {
		t.Errorf("String() = %q, want %q", got, "RefCell(42)")
	}

	// Shared borrows do not block rendering.
	r, _ := c.Borrow()
	if got := c.String(); got != "RefCell(42)" {
		t.Errorf("String() under shared borrow = %q, want %q", got, "RefCell(42)")
	}
	r.Release()

	// Exclusive borrows do: render a placeholder, never attempt the
	// conflicting read.
	m, _ := c.BorrowMut()
	if got := c.String(); got != "RefCell(<borrowed>)" {
		t.Errorf("String() under exclusive borrow = %q, want %q", got, "RefCell(<borrowed>)")
	}
	m.Release()
}

func BenchmarkBorrow(b *testing.B) {
	a := NewArena[cellScope]()
	defer a.Release()
	c := NewCell(a, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, _ := c.Borrow()
		r.Release()
	}
}

func BenchmarkBorrowMut(b *testing.B) {
	a := NewArena[cellScope]()
	defer a.Release()
	c := NewCell(a, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m, _ := c.BorrowMut()
		*m.Get()++
		m.Release()
	}
}
