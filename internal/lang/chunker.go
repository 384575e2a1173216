package lang

import "strings"

// minCutFraction rejects cut points in the first half of a window so that
// boundary-aware splitting cannot degenerate into tiny chunks.
const minCutFraction = 0.5

// SplitChunks splits text into chunks of at most maxLen characters, preferring
// sentence-ending punctuation and falling back to the last space inside the
// window. A cut point earlier than half the window is ignored and the chunk is
// cut at the full window length instead. Whitespace runs are collapsed to
// single spaces before splitting, and chunk order follows input order.
// Limits are measured in runes so Indic scripts are never split mid-character.
// A non-positive maxLen falls back to DefaultMaxChars so the loop always
// advances.
func SplitChunks(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxChars
	}
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= maxLen {
		return []string{string(runes)}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + maxLen
		if end >= len(runes) {
			if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
				chunks = append(chunks, tail)
			}
			break
		}

		window := runes[start:end]
		cut := lastBoundaryCut(window)
		if cut == -1 || cut < int(float64(maxLen)*minCutFraction) {
			cut = len(window)
		}

		chunk := strings.TrimSpace(string(runes[start : start+cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		start += cut
	}
	return chunks
}

// lastBoundaryCut returns the offset of the last sentence-ending punctuation
// followed by a space inside window, falling back to the last space, or -1
// when the window has no safe boundary at all.
func lastBoundaryCut(window []rune) int {
	lastSpace := -1
	cut := -1
	for i := len(window) - 1; i > 0; i-- {
		if window[i] != ' ' {
			continue
		}
		if lastSpace == -1 {
			lastSpace = i
		}
		switch window[i-1] {
		case '.', '?', '!':
			cut = i - 1
		}
		if cut != -1 {
			break
		}
	}
	if cut == -1 {
		return lastSpace
	}
	return cut
}
