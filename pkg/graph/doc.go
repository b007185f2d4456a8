// Package graph defines the scene graph for meshbool scripts.
// A scene is an immutable DAG of primitives, transforms and boolean
// operations whose roots are named outputs.
package graph
