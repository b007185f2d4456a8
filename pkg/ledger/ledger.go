// Package ledger maps unordered vertex pairs (edges) to values.
//
// A polygon traversal visits every shared edge twice, once per adjacent
// face and in opposite directions. Keys are canonicalised so that both
// traversal directions of the same edge address the same entry.
package ledger

import "fmt"

// EdgeKey is the canonical key of an unordered vertex pair.
// Hi is never less than Lo.
type EdgeKey struct {
	Hi, Lo int
}

// Key returns the canonical key for the edge between v1 and v2.
func Key(v1, v2 int) EdgeKey {
	if v2 > v1 {
		v1, v2 = v2, v1
	}
	return EdgeKey{Hi: v1, Lo: v2}
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("(%d, %d)", k.Hi, k.Lo)
}

// MissingEdgeError is the panic value raised by Get when an edge was never
// recorded. It signals that the caller walked a mesh the ledger was not
// built from.
type MissingEdgeError struct {
	V1, V2 int
}

func (e *MissingEdgeError) Error() string {
	return fmt.Sprintf("ledger: no entry for edge (%d, %d)", e.V1, e.V2)
}

// Ledger stores one value per unordered vertex pair.
type Ledger[T any] struct {
	m map[EdgeKey]T
}

// New returns an empty ledger sized for roughly sizeHint edges.
func New[T any](sizeHint int) *Ledger[T] {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Ledger[T]{m: make(map[EdgeKey]T, sizeHint)}
}

// Put records val for the edge (v1, v2), replacing any previous value.
func (l *Ledger[T]) Put(v1, v2 int, val T) {
	l.m[Key(v1, v2)] = val
}

// Get returns the value recorded for the edge (v1, v2) in either direction.
// It panics with *MissingEdgeError if the edge was never recorded.
func (l *Ledger[T]) Get(v1, v2 int) T {
	val, ok := l.m[Key(v1, v2)]
	if !ok {
		panic(&MissingEdgeError{V1: v1, V2: v2})
	}
	return val
}

// Lookup is the non-panicking form of Get.
func (l *Ledger[T]) Lookup(v1, v2 int) (T, bool) {
	val, ok := l.m[Key(v1, v2)]
	return val, ok
}

// Len returns the number of distinct edges recorded.
func (l *Ledger[T]) Len() int {
	return len(l.m)
}
