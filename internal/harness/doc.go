// Package harness runs scripted graph scenarios frame by frame.
//
// A scenario names a graph document, a frame count and a fixed step. It may
// script pad input and live edits (param changes, connects, disconnects and
// publishes) at given frames, and it asserts on node outputs, plan order,
// publish results and the archive. Every run is deterministic: the clock is
// scripted, the session id is fixed and each run archives into a fresh
// in-memory store.
//
// The per-frame trace can be compared against golden files:
//
//	go test ./internal/harness -update
//
// regenerates testdata/golden.
package harness
