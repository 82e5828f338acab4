package illuminate

import (
	"strings"
	"unicode"
)

// Historian annotations quote a passage of the chronicle they attach to.
// Between writing the note and saving it, the body may have been edited or
// tone-rewritten, so an exact byte match is not guaranteed. FindAnchor
// locates the best position for the quoted text: exact match first, then a
// normalized fuzzy scan.

// anchorThreshold is the minimum bigram similarity for a fuzzy match.
const anchorThreshold = 0.70

// FindAnchor returns the byte offset of anchor within body and whether a
// confident match was found.
func FindAnchor(body, anchor string) (int, bool) {
	if anchor == "" || body == "" {
		return 0, false
	}
	if idx := strings.Index(body, anchor); idx >= 0 {
		return idx, true
	}

	// Fuzzy pass: slide a window of the same word count across the body and
	// compare normalized text by bigram overlap.
	bodyWords := splitWords(body)
	anchorWords := splitWords(anchor)
	if len(anchorWords) == 0 || len(bodyWords) < len(anchorWords) {
		return 0, false
	}

	target := normalizeWords(anchorWords)
	bestScore := 0.0
	bestOffset := 0
	for i := 0; i+len(anchorWords) <= len(bodyWords); i++ {
		window := bodyWords[i : i+len(anchorWords)]
		score := bigramSimilarity(target, normalizeWords(window))
		if score > bestScore {
			bestScore = score
			bestOffset = window[0].offset
		}
	}
	if bestScore < anchorThreshold {
		return 0, false
	}
	return bestOffset, true
}

type word struct {
	text   string
	offset int
}

func splitWords(s string) []word {
	var words []word
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, word{text: s[start:i], offset: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, word{text: s[start:], offset: start})
	}
	return words
}

func normalizeWords(words []word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsNumber(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, w.text)
	}
	return strings.Join(parts, " ")
}

// bigramSimilarity is the Sorensen-Dice coefficient over character bigrams.
func bigramSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}
	counts := make(map[string]int)
	for i := 0; i+2 <= len(a); i++ {
		counts[a[i:i+2]]++
	}
	overlap := 0
	for i := 0; i+2 <= len(b); i++ {
		if counts[b[i:i+2]] > 0 {
			counts[b[i:i+2]]--
			overlap++
		}
	}
	return 2 * float64(overlap) / float64(len(a)-1+len(b)-1)
}
