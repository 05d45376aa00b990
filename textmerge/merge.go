// Package textmerge folds incoming transcript text into an edit buffer,
// deciding where separating spaces belong so dictated fragments read as
// continuous prose.
package textmerge

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Mode int

const (
	// ModeInsert splices the incoming text at the cursor, adding spaces
	// around it as needed.
	ModeInsert Mode = iota
	// ModeReplace discards the buffer and keeps only the incoming text.
	ModeReplace
)

// Characters after which no separating space is wanted (openers, quotes).
const noSpaceAfter = "([{“‘«\"'`"

// Characters before which no separating space is wanted (closers,
// punctuation that binds to the preceding word).
const noSpaceBefore = ")]}.,!?;:”’»\"'`"

// Merge is pure: identical inputs always yield identical output. cursor is
// a byte offset into full and is clamped into range; the returned offset
// sits immediately after the inserted text.
func Merge(incoming string, cursor int, full string, mode Mode) (string, int) {
	if mode == ModeReplace {
		return incoming, len(incoming)
	}

	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(full) {
		cursor = len(full)
	}
	// Keep the cursor on a rune boundary; a mid-rune offset would split
	// the character it lands in.
	for cursor > 0 && cursor < len(full) && !utf8.RuneStart(full[cursor]) {
		cursor--
	}

	if incoming == "" {
		return full, cursor
	}

	before := full[:cursor]
	after := full[cursor:]

	lead := ""
	if needsSpaceBetween(before, incoming) {
		lead = " "
	}
	trail := ""
	if needsSpaceBetween(incoming, after) {
		trail = " "
	}

	merged := before + lead + incoming + trail + after
	return merged, len(before) + len(lead) + len(incoming)
}

// needsSpaceBetween reports whether a separating space belongs between a
// (non-empty) left fragment and a (non-empty) right fragment.
func needsSpaceBetween(left, right string) bool {
	last, lastSize := utf8.DecodeLastRuneInString(left)
	if lastSize == 0 {
		return false
	}
	first, firstSize := utf8.DecodeRuneInString(right)
	if firstSize == 0 {
		return false
	}
	if unicode.IsSpace(last) || strings.ContainsRune(noSpaceAfter, last) {
		return false
	}
	if unicode.IsSpace(first) || strings.ContainsRune(noSpaceBefore, first) {
		return false
	}
	return true
}

// ChatTrim strips trailing sentence punctuation and whitespace from a
// transcript fragment ("[.!?;,]*\s*$" semantics). Chat-style targets want
// the final period gone before the text is merged.
func ChatTrim(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	s = strings.TrimRight(s, ".!?;,")
	return strings.TrimRight(s, " \t\r\n")
}
