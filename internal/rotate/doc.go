// Package rotate owns invocation of the external rotation tool.
//
// Ownership boundary:
// - the Runner abstraction over local and SSH execution
// - building the tool command line around the published config path
// - the in-flight guard that skips overlapping invocations
//
// Rotate never decides when to run; cadence belongs to internal/schedule.
package rotate
