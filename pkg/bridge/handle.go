// Package bridge converts host polygon meshes into kernel solids, runs
// boolean operations on them and converts the result back, tagging every
// output polygon, edge and loop with the input element it came from.
package bridge

import (
	"errors"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/ledger"
	"github.com/google/uuid"
)

var (
	// ErrInvalidOperator is returned for an unknown Op.
	ErrInvalidOperator = errors.New("bridge: invalid operator")
	// ErrNoSolid is returned when exporting a handle whose operation failed.
	ErrNoSolid = errors.New("bridge: handle has no solid")
	// ErrReleased is returned when a released handle is used.
	ErrReleased = errors.New("bridge: handle released")
)

// tagSet holds per-face and per-half-edge provenance of one solid.
type tagSet struct {
	faces []OrigIndex
	edges [][]OrigPair
}

func (t tagSet) empty() bool {
	return t.faces == nil
}

func (t tagSet) face(f int) OrigIndex {
	if f < 0 || f >= len(t.faces) {
		return NoOrigin
	}
	return t.faces[f]
}

func (t tagSet) edge(f, i int) OrigPair {
	if f < 0 || f >= len(t.edges) || i < 0 || i >= len(t.edges[f]) {
		return NoOrigPair
	}
	return t.edges[f][i]
}

// Handle owns one kernel solid together with the edge ledger of the host
// mesh it was imported from and the provenance tables of its elements.
// A Handle is not safe for concurrent use.
type Handle struct {
	// ID identifies the handle in logs.
	ID uuid.UUID

	solid    *kernel.Solid
	edges    *ledger.Ledger[int]
	tags     tagSet
	released bool
}

func newHandle(s *kernel.Solid, edges *ledger.Ledger[int]) *Handle {
	return &Handle{ID: uuid.New(), solid: s, edges: edges}
}

// Solid returns the owned solid. It is nil after Release and for the result
// of a failed operation. A Compute call may replace an operand's solid.
func (h *Handle) Solid() *kernel.Solid {
	return h.solid
}

// Tagged reports whether provenance tables have been filled.
func (h *Handle) Tagged() bool {
	return !h.tags.empty()
}

// FaceOrigin returns the origin tag of face f.
func (h *Handle) FaceOrigin(f int) OrigIndex {
	return h.tags.face(f)
}

// EdgeOrigin returns the origin pair of half-edge i of face f.
func (h *Handle) EdgeOrigin(f, i int) OrigPair {
	return h.tags.edge(f, i)
}

// Release drops the solid and all tables. Releasing twice is a no-op.
func (h *Handle) Release() {
	h.solid = nil
	h.edges = nil
	h.tags = tagSet{}
	h.released = true
}

// usable returns ErrReleased for released handles.
func (h *Handle) usable() error {
	if h == nil || h.released {
		return ErrReleased
	}
	if h.solid == nil {
		return ErrNoSolid
	}
	return nil
}

// clone returns an independent copy sharing only the immutable ledger.
func (h *Handle) clone() *Handle {
	c := newHandle(h.solid.Clone(), h.edges)
	c.tags = h.tags.clone()
	return c
}

func (t tagSet) clone() tagSet {
	if t.empty() {
		return tagSet{}
	}
	c := tagSet{
		faces: append([]OrigIndex(nil), t.faces...),
		edges: make([][]OrigPair, len(t.edges)),
	}
	for i, e := range t.edges {
		c.edges[i] = append([]OrigPair(nil), e...)
	}
	return c
}
