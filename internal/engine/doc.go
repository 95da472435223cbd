// Package engine evaluates and publishes livegraph graphs.
//
// ARCHITECTURE:
//
// Two graphs:
// The edit graph is the mutable working copy. The active graph is what
// gets evaluated each frame. Publish is the only operation that writes
// the active graph: it validates the edit graph, copies it over and bumps
// the version. A reader of the active graph sees either the previous or the
// new generation in full, never a mix.
//
// Frame loop:
// 1. The FrameClock yields dt for the frame
// 2. The runtime context advances (time, frame, inputs)
// 3. Run walks the published EvalPlan and writes every node's outputs
//    into the OutputBank
// 4. Collaborators (render, trace) read the bank through Output
//
// Run performs no allocation and keeps no state between calls. Anything a
// node must remember lives in its own State.
//
// CRITICAL PATTERNS:
//
// Single writer:
// The engine is single-threaded and frame-stepped. There is no suspension
// point inside validation or evaluation, and no locking: correctness is a
// versioning property of the edit/active pair.
//
// Plan invalidation:
// An EvalPlan is only valid for the graph it was built from. The engine
// keeps the plan returned by the last successful publish and never reuses
// it across a mutation of the active graph.
package engine
