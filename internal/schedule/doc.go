// Package schedule owns the daemon loop around the compiler.
//
// Ownership boundary:
// - the render pass: load declarations, compile, publish
// - the rotate pass: hand the published path to the tool invoker
// - cadence (ticker), declaration watching (debounced), and shutdown
// - the status snapshot served by the admin endpoints
//
// A failed render never reaches the tool; a watch event re-renders but
// never rotates, rotation stays on its cadence.
package schedule
