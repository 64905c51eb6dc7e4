package ipa

import "strings"

// ZWSP, ZWNJ, ZWJ, and BOM occasionally leak into espeak output.
func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff':
		return true
	}
	return false
}

// Clean normalizes raw espeak output: internal whitespace runs collapse to
// single spaces and, when requested, zero-width characters are removed.
func Clean(s string, stripZeroWidth bool) string {
	if stripZeroWidth {
		s = strings.Map(func(r rune) rune {
			if isZeroWidth(r) {
				return -1
			}
			return r
		}, s)
	}
	return strings.Join(strings.Fields(s), " ")
}
