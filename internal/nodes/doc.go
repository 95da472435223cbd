// Package nodes defines every built-in node type: its evaluation behavior
// and its static metadata (names, port and param counts, param defaults
// and bounds).
//
// The Registry is built once by New and never changes afterwards. It is
// passed by reference to whatever needs it; there is no package-level
// registry instance.
package nodes
