// Package publish owns placing rendered output on disk.
//
// Ownership boundary:
// - staging rendered text in the destination directory
// - renaming the staging file onto the destination path
// - cleanup of the staging file on any failure
//
// Readers of the destination path only ever observe a complete document;
// a failed pass leaves the previous document in place.
package publish
