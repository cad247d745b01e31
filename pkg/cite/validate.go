// ABOUTME: Citation coverage validation over sentence-segmented text
// ABOUTME: Punctuation-boundary splitting and anchor substring matching

package cite

import (
	"strings"
	"unicode"
)

// Detail reports the coverage decision for one sentence, in original order.
type Detail struct {
	Sentence string `json:"sentence"`
	Covered  bool   `json:"covered"`
}

// Report is the validation outcome. CoveragePct uses a denominator floor
// of one sentence, so empty input yields 0.0 rather than a division error.
type Report struct {
	CoveragePct float64  `json:"coverage_pct"`
	Details     []Detail `json:"details"`
}

// Validate segments text into sentences and checks each against the anchor
// set. A sentence is covered when any anchor appears in it
// case-insensitively, or when an http-prefixed anchor appears verbatim.
// Duplicate citations collapse into a single anchor.
func Validate(text string, citations []string) Report {
	anchors := make(map[string]struct{}, len(citations))
	for _, c := range citations {
		anchors[c] = struct{}{}
	}

	sentences := splitSentences(text)
	details := make([]Detail, 0, len(sentences))
	covered := 0
	for _, s := range sentences {
		hit := sentenceCovered(s, anchors)
		if hit {
			covered++
		}
		details = append(details, Detail{Sentence: s, Covered: hit})
	}

	denom := len(details)
	if denom < 1 {
		denom = 1
	}
	return Report{
		CoveragePct: float64(covered) / float64(denom) * 100,
		Details:     details,
	}
}

func sentenceCovered(sentence string, anchors map[string]struct{}) bool {
	lower := strings.ToLower(sentence)
	for anchor := range anchors {
		if strings.Contains(lower, strings.ToLower(anchor)) {
			return true
		}
		if strings.HasPrefix(anchor, "http") && strings.Contains(sentence, anchor) {
			return true
		}
	}
	return false
}

// splitSentences breaks text after '.', '!' or '?' followed by whitespace,
// consuming the whitespace run. No abbreviation or locale awareness: this
// is a deliberate heuristic, not a linguistic segmenter. Empty input yields
// no sentences.
func splitSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var sentences []string
	start := 0
	i := 0
	for i < len(runes) {
		r := runes[i]
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, string(runes[start:i+1]))
			i++
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}
