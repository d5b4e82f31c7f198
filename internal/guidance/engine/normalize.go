package engine

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	compressThreshold = 500
	compressWindow    = 800
	compressSentences = 5
	compressKeep      = 2
	compressMaxLen    = 250
	ellipsis          = "…"
)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// Normalize collapses whitespace, trims and lower-cases text.
func Normalize(text string) string {
	text = apostrophes.Replace(text)
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Compress shortens normalized text longer than 500 runes to a short excerpt of
// its two densest leading sentences. Shorter text is returned unchanged.
func Compress(normalized string) string {
	if utf8.RuneCountInString(normalized) <= compressThreshold {
		return normalized
	}
	window := truncateRunes(normalized, compressWindow)

	sentences := splitSentences(window)
	if len(sentences) > compressSentences {
		sentences = sentences[:compressSentences]
	}

	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, 0, len(sentences))
	for _, s := range sentences {
		ranked = append(ranked, scored{text: s, score: sentenceScore(s)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > compressKeep {
		ranked = ranked[:compressKeep]
	}

	kept := make([]string, 0, len(ranked))
	for _, r := range ranked {
		kept = append(kept, r.text)
	}
	out := strings.Join(kept, " ")
	if utf8.RuneCountInString(out) > compressMaxLen {
		out = cutAtSpace(out, compressMaxLen) + ellipsis
	}
	return out
}

// splitSentences ends a sentence after a run of . ! or ? followed by whitespace.
func splitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i
		for j+1 < len(runes) && isTerminal(runes[j+1]) {
			j++
		}
		if j+1 == len(runes) || unicode.IsSpace(runes[j+1]) {
			if s := strings.TrimSpace(string(runes[start : j+1])); s != "" {
				out = append(out, s)
			}
			start = j + 1
		}
		i = j
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }

func sentenceScore(s string) float64 {
	words := strings.Fields(s)
	dense := 0
	for _, w := range words {
		if isContentWord(w) {
			dense++
		}
	}
	return math.Sqrt(float64(len(words))) + 0.2*float64(dense)
}

// isContentWord is true for purely alphabetic tokens of four or more letters,
// ignoring surrounding punctuation.
func isContentWord(w string) bool {
	w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
	if utf8.RuneCountInString(w) < 4 {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// cutAtSpace trims s to at most n runes, preferring the last space in range.
func cutAtSpace(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := runes[:n]
	for i := len(cut) - 1; i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace)
}
