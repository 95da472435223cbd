// Package graph holds the fixed-capacity dataflow graph model and the
// store operations that edit it.
//
// A Graph is a flat table of MaxNodes slots. Nodes reference their
// producers through Connections on up to MaxInputs input ports; every port
// carries one float32. Nothing in this package allocates once a Graph
// exists: slots are claimed and released in place, and copying a Graph is
// a plain value copy.
//
// Two Graph values coexist at runtime. The edit graph is mutated by the
// editor through Alloc, Free, Connect, Disconnect and SetParam. The active
// graph is written only by the publish step in package engine and is
// otherwise read-only.
//
// INVARIANTS:
//   - NodeCount equals the number of slots whose Type != TypeNone
//   - A failed store operation leaves the graph unchanged
//   - A node never connects to itself (Connect rejects src == dst)
package graph
