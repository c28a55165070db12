// Package fixture exercises the tracegen composition rule: mutually
// recursive aggregates, container fields, a hand-marked type and a type
// that must be refused.
package fixture

type Node struct {
	Name     string
	Children []*Node
	Attrs    map[string]int
	Owner    *Tree
}

type Tree struct {
	Root  *Node
	Depth int
}

// Marked vouches for its hidden channel by hand.
type Marked struct {
	notify chan int
}

func (Marked) Traceable() {}

// Holder is traceable because Marked declares the capability.
type Holder struct {
	M Marked
}

// Evil must be refused: the channel field hides references.
type Evil struct {
	C chan int
}
