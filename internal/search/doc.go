// Package search implements caret-relative text search with wraparound.
//
// A search is a pure function of (document, caret, pattern, mode, direction).
// The document is split at the caret into a primary window; when the primary
// window holds no match, a second pass scans the whole document. Forward
// searches take the first match of a window and backward searches take the
// last one. In regex mode "last" means the last match of a left-to-right,
// non-overlapping enumeration, not a right-to-left scan.
//
// All offsets at the package boundary are rune offsets. Byte offsets never
// leave the package.
package search
