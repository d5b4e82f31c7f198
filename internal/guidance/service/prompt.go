package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/wellspring-backend/internal/guidance/engine"
	"github.com/yungbote/wellspring-backend/internal/guidance/provider"
)

const systemPrompt = `You are a warm, practical wellbeing coach for students and young professionals.
Reply with exactly one paragraph of plain prose, no lists, no headings, no markdown.
Acknowledge the feeling, offer one or two concrete next steps, and end with a gentle question.
Never diagnose. If the person may be at risk, encourage them to contact someone they trust or a crisis line.`

func buildMessages(a engine.Analysis) []provider.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Mood: %s\n", a.Signals.Mood)
	if len(a.Signals.Stressors) > 0 {
		fmt.Fprintf(&b, "Stressors: %s\n", strings.Join(a.Signals.Stressors, ", "))
	}
	if a.Signals.HasRisk() {
		b.WriteString("Risk: crisis language detected\n")
	}
	if len(a.Suggestions) > 0 {
		fmt.Fprintf(&b, "Possible steps: %s\n", strings.Join(a.Suggestions, " | "))
	}
	fmt.Fprintf(&b, "Keep it between %d and %d characters.\n\n", a.Envelope.Min, a.Envelope.Max)
	b.WriteString("Entry:\n")
	b.WriteString(a.Working)

	return []provider.Message{
		{Role: provider.RoleSystem, Content: systemPrompt},
		{Role: provider.RoleUser, Content: b.String()},
	}
}

var (
	bulletRE   = regexp.MustCompile(`(?m)^\s*(?:[-*+•]|\d+[.)])\s+`)
	headingRE  = regexp.MustCompile(`(?m)^\s*#{1,6}\s*`)
	emphasisRE = regexp.MustCompile("\\*+|__+|`+")
	sentinelRE = regexp.MustCompile(`(?i)^\s*(?:<s>|</s>|<\|assistant\|>|\[inst\]|\[/inst\]|assistant:|guidance:|response:|answer:)\s*`)
)

// cleanCompletion flattens provider output into one plain paragraph.
func cleanCompletion(text string) string {
	text = strings.ReplaceAll(text, "</s>", " ")
	text = headingRE.ReplaceAllString(text, "")
	text = bulletRE.ReplaceAllString(text, "")
	text = emphasisRE.ReplaceAllString(text, "")
	for {
		stripped := sentinelRE.ReplaceAllString(text, "")
		if stripped == text {
			break
		}
		text = stripped
	}
	return strings.Join(strings.Fields(text), " ")
}
