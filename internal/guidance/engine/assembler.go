package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const similarityThreshold = 0.85

// Envelope bounds the guidance length in runes.
type Envelope struct {
	Min int
	Max int
}

// EnvelopeFor picks the tier for a raw normalized input length.
func EnvelopeFor(rawLen int) Envelope {
	switch {
	case rawLen < 160:
		return Envelope{Min: 160, Max: 420}
	case rawLen < 600:
		return Envelope{Min: 240, Max: 560}
	default:
		return Envelope{Min: 320, Max: 760}
	}
}

type slot int

const (
	slotOpener slot = iota
	slotBody
	slotAction
	slotAsk
	slotCrisis
)

// StyleProfile orders the fragment slots and selects opener/question variants.
// The crisis slot is always first or last so truncation never touches it.
type StyleProfile struct {
	Name            string
	Order           []slot
	OpenerVariant   int
	QuestionVariant int
}

var profiles = []StyleProfile{
	{Name: "gentle", Order: []slot{slotOpener, slotBody, slotAction, slotAsk, slotCrisis}, OpenerVariant: 0, QuestionVariant: 0},
	{Name: "grounded", Order: []slot{slotCrisis, slotOpener, slotAction, slotBody, slotAsk}, OpenerVariant: 1, QuestionVariant: 1},
	{Name: "practical", Order: []slot{slotBody, slotAction, slotOpener, slotAsk, slotCrisis}, OpenerVariant: 2, QuestionVariant: 2},
	{Name: "reflective", Order: []slot{slotOpener, slotAsk, slotBody, slotAction, slotCrisis}, OpenerVariant: 1, QuestionVariant: 0},
	{Name: "steady", Order: []slot{slotCrisis, slotBody, slotOpener, slotAction, slotAsk}, OpenerVariant: 2, QuestionVariant: 1},
}

func profileIndex(seed, day uint32) int {
	return int((uint64(seed) + uint64(day)) % uint64(len(profiles)))
}

func (p StyleProfile) crisisFirst() bool {
	return len(p.Order) > 0 && p.Order[0] == slotCrisis
}

// assemble joins the fragments in profile order and fits them to env.
func assemble(p StyleProfile, f fragments, env Envelope) string {
	parts := make([]string, 0, len(p.Order))
	for _, s := range p.Order {
		var text string
		switch s {
		case slotOpener:
			text = f.opener
		case slotBody:
			text = f.body
		case slotAction:
			text = f.action
		case slotAsk:
			text = f.ask
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return placeCrisis(strings.Join(parts, " "), f.crisis, p.crisisFirst(), env)
}

// placeCrisis fits text into what env leaves after the crisis line, then
// attaches the line unmodified.
func placeCrisis(text, crisis string, first bool, env Envelope) string {
	if crisis == "" {
		return fit(text, env)
	}
	reserve := utf8.RuneCountInString(crisis) + 1
	rest := fit(text, Envelope{Min: max(0, env.Min-reserve), Max: max(0, env.Max-reserve)})
	switch {
	case rest == "":
		return crisis
	case first:
		return crisis + " " + rest
	default:
		return rest + " " + crisis
	}
}

// fit appends the closing nudge to short text and truncates long text.
func fit(text string, env Envelope) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < env.Min {
		if text == "" {
			text = closingNudge
		} else {
			text += " " + closingNudge
		}
	}
	return truncateSentence(text, env.Max)
}

// truncateSentence cuts text to at most limit runes, backing off to a word
// boundary and ending with a period.
func truncateSentence(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 1 {
		return ""
	}
	cut := runes[:limit-1]
	for i := len(cut) - 1; i > len(cut)/2; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	out := strings.TrimRightFunc(string(cut), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return out + "."
}

func tokenSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	var b strings.Builder
	flush := func() {
		if b.Len() >= 3 {
			set[b.String()] = struct{}{}
		}
		b.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return set
}

// Jaccard is the token-set similarity of a and b. Two empty sets are identical.
func Jaccard(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	inter := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tooSimilar(candidate string, recent []string) bool {
	for _, prev := range recent {
		if Jaccard(candidate, prev) >= similarityThreshold {
			return true
		}
	}
	return false
}
