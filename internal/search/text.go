package search

import "unicode/utf8"

// runeToByte returns the byte offset of rune offset r in s.
// r past the end maps to len(s).
func runeToByte(s string, r int) int {
	if r <= 0 {
		return 0
	}
	for i := range s {
		if r == 0 {
			return i
		}
		r--
	}
	return len(s)
}

// byteToRune returns the rune offset of byte offset b in s.
func byteToRune(s string, b int) int {
	if b <= 0 {
		return 0
	}
	if b >= len(s) {
		return utf8.RuneCountInString(s)
	}
	return utf8.RuneCountInString(s[:b])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
