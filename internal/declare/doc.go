// Package declare owns the declaration layers that feed a render pass.
//
// Ownership boundary:
// - parsing TOML and JSONC layer files into partial-update ops
// - lexical layer ordering and field-wise merge into one compile.Source
// - per-file layer caching keyed on size and mtime
//
// A layer never sets defaults and never validates cross-field rules; it
// only records which fields the file actually declared. Defaults belong
// to internal/pathspec, validation to internal/compile.
package declare
