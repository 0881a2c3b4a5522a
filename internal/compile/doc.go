// Package compile owns the render pass from declared entries to the
// rotation tool's config text.
//
// Ownership boundary:
// - entry construction and disabled-entry filtering
// - batch cross-field validation
// - deterministic ordering and block rendering
//
// Compile never touches the filesystem; publishing the rendered text
// belongs to internal/publish.
package compile
