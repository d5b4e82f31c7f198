package engine

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const summaryDigestLen = 140

// fragments are the planned pieces of one guidance paragraph.
type fragments struct {
	opener string
	body   string
	action string
	ask    string
	crisis string
}

// planSuggestions orders topic tips ahead of the general ones, then dedupes
// and caps the list.
func planSuggestions(sig Signals, seed uint32) []string {
	var candidates []string
	if sig.HasStressor(StressorSleep) {
		candidates = append(candidates, pick(sleepTips, seed, saltTipSleep))
	}
	if hasAnyStressor(sig, examFamily) {
		candidates = append(candidates, pick(examTips, seed, saltTipExam))
	}
	if hasAnyStressor(sig, teamFamily) {
		candidates = append(candidates, pick(teamTips, seed, saltTipTeam))
	}
	candidates = append(candidates, pick(generalTips, seed, saltTipGeneral))
	rotated := rotate(generalTips, int(seed%uint32(len(generalTips))))
	candidates = append(candidates, pick(rotated, seed, saltTipRotated))

	return dedupeCap(candidates, MaxSuggestions)
}

func planOpener(mood string, variant int, seed uint32) string {
	variants, ok := openers[mood]
	if !ok {
		variants = openers[MoodNeutral]
	}
	return pick(variants[variant%len(variants)], seed, saltOpener)
}

func planBody(sig Signals, seed uint32) string {
	var candidates []string
	if hasAnyStressor(sig, examFamily) {
		candidates = append(candidates, examBodies...)
	}
	if sig.HasStressor(StressorSleep) {
		candidates = append(candidates, sleepBodies...)
	}
	if hasAnyStressor(sig, teamFamily) {
		candidates = append(candidates, teamBodies...)
	}
	if len(candidates) == 0 {
		candidates = genericBodies
	}
	return pick(candidates, seed, saltBody)
}

func planAction(suggestions []string, seed uint32) string {
	if len(suggestions) == 0 {
		return ""
	}
	return fmt.Sprintf(pick(actionTemplates, seed, saltAction), lowerFirst(suggestions[0]))
}

func planQuestion(variant int, seed uint32) string {
	return pick(questionPools[variant%len(questionPools)], seed, saltQuestion)
}

// planQuestions draws up to MaxQuestions distinct prompts across all pools.
func planQuestions(seed uint32) []string {
	var all []string
	for _, pool := range questionPools {
		all = append(all, pool...)
	}
	all = rotate(all, index(len(all), seed, saltQuestions))
	return dedupeCap(all, MaxQuestions)
}

func summarize(sig Signals, working string) string {
	stressors := "no clear stressors"
	if len(sig.Stressors) > 0 {
		stressors = strings.Join(sig.Stressors, ", ")
	}
	digest := working
	if digest == "" {
		digest = emptyPlaceholder
	}
	if utf8.RuneCountInString(digest) > summaryDigestLen {
		digest = cutAtSpace(digest, summaryDigestLen) + ellipsis
	}
	return fmt.Sprintf("%s · %s: %s", sig.Mood, stressors, digest)
}

func dedupeCap(in []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
