package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceHistory struct {
	items []string
	err   error
}

func (h *sliceHistory) Recent(context.Context) ([]string, error) {
	if h.err != nil {
		return nil, h.err
	}
	return append([]string(nil), h.items...), nil
}

func (h *sliceHistory) Remember(_ context.Context, text string) error {
	if h.err != nil {
		return h.err
	}
	h.items = append([]string{text}, h.items...)
	if len(h.items) > 10 {
		h.items = h.items[:10]
	}
	return nil
}

func fixedDay(day int64) func() time.Time {
	return func() time.Time { return time.Unix(day*86400+3600, 0).UTC() }
}

func TestComposeExample(t *testing.T) {
	c := New(Options{Now: fixedDay(0)})
	res := c.Compose(context.Background(), "I have 3 exams this week and can't sleep", "")

	assert.Equal(t, MoodTired, res.Signals.Mood)
	assert.Equal(t, []string{StressorExams, StressorSleep}, res.Signals.Stressors)
	assert.Empty(t, res.Signals.RiskFlags)
	assert.Equal(t, SourceRules, res.Source)
	assert.Nil(t, res.Questions)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "Keep tomorrow's wake-up time the same as today's, even if tonight's sleep is short.", res.Suggestions[0])
	assert.True(t, strings.HasPrefix(res.Summary, "tired · exams, sleep: i have 3 exams"), res.Summary)
}

func TestComposeDeterministic(t *testing.T) {
	text := "My team project is stuck and my boss is angry"
	a := New(Options{Now: fixedDay(20000)}).Compose(context.Background(), text, ModeJournal)
	b := New(Options{Now: fixedDay(20000)}).Compose(context.Background(), text, ModeJournal)
	assert.Equal(t, a, b)
	assert.Equal(t, MoodFrustrated, a.Signals.Mood)
	assert.Equal(t, []string{StressorTeam, StressorProject, StressorWork}, a.Signals.Stressors)
}

func TestDayDriftOnlyChangesStyle(t *testing.T) {
	text := "so tired of everything at school"
	base := New(Options{Now: fixedDay(0)}).Compose(context.Background(), text, "")
	for day := int64(1); day < 5; day++ {
		res := New(Options{Now: fixedDay(day)}).Compose(context.Background(), text, "")
		assert.Equal(t, base.Signals, res.Signals)
		assert.Equal(t, base.Suggestions, res.Suggestions)
		assert.Equal(t, base.Summary, res.Summary)
	}
}

func TestComposeLengthEnvelope(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"ok",
		"I want to die",
		strings.Repeat("everything is too much this week with exams and my team. ", 5),
		strings.Repeat("i keep thinking about the deadline and i want to die ", 12),
		strings.Repeat("word ", 900),
	}
	for day := int64(0); day < 5; day++ {
		c := New(Options{Now: fixedDay(day), History: &sliceHistory{}})
		for _, in := range inputs {
			a := c.Analyze(in, "")
			res := c.Compose(context.Background(), in, "")
			n := utf8.RuneCountInString(res.Guidance)
			assert.GreaterOrEqual(t, n, a.Envelope.Min, "input %q", in)
			assert.LessOrEqual(t, n, a.Envelope.Max, "input %q", in)
		}
	}
}

func TestCrisisLineAlwaysPresent(t *testing.T) {
	inputs := []string{
		"I want to die",
		"exams, deadlines, my team, no sleep, i don't want to be alive anymore",
		strings.Repeat("i am so overwhelmed and i think about suicide. ", 20),
	}
	for day := int64(0); day < 5; day++ {
		c := New(Options{Now: fixedDay(day), History: &sliceHistory{}})
		for _, in := range inputs {
			for i := 0; i < 2; i++ {
				res := c.Compose(context.Background(), in, "")
				assert.Equal(t, []string{RiskCrisis}, res.Signals.RiskFlags)
				assert.Contains(t, res.Guidance, CrisisLine)
			}
		}
	}
}

func TestEmptyInputIsTotal(t *testing.T) {
	res := New(Options{}).Compose(context.Background(), "", "")
	assert.Equal(t, MoodNeutral, res.Signals.Mood)
	assert.Empty(t, res.Signals.Stressors)
	assert.NotNil(t, res.Signals.Stressors)
	assert.Empty(t, res.Signals.RiskFlags)
	assert.NotEmpty(t, res.Guidance)
	assert.Equal(t, "neutral · no clear stressors: (empty)", res.Summary)
}

func TestSuggestionsBounded(t *testing.T) {
	c := New(Options{})
	inputs := []string{
		"",
		"can't sleep, exams tomorrow, my teammate ignores the group project",
		"money and family and my boss",
		"tests tests tests",
	}
	for _, in := range inputs {
		res := c.Compose(context.Background(), in, "")
		require.LessOrEqual(t, len(res.Suggestions), MaxSuggestions)
		require.NotEmpty(t, res.Suggestions)
		seen := map[string]bool{}
		for _, s := range res.Suggestions {
			assert.False(t, seen[s], "duplicate suggestion %q", s)
			seen[s] = true
		}
	}
}

func TestRepeatedInputRegenerates(t *testing.T) {
	texts := []string{
		"I have 3 exams this week and can't sleep",
		"I want to die",
		"",
		"my coworker keeps taking credit and i'm fed up",
	}
	for day := int64(0); day < 5; day++ {
		for _, text := range texts {
			h := &sliceHistory{}
			c := New(Options{Now: fixedDay(day), History: h})
			first := c.Compose(context.Background(), text, "")
			second := c.Compose(context.Background(), text, "")
			assert.Less(t, Jaccard(first.Guidance, second.Guidance), similarityThreshold, "text %q day %d", text, day)
			require.Len(t, h.items, 2)
			assert.Equal(t, second.Guidance, h.items[0])
		}
	}
}

func TestHistoryFailureIsIgnored(t *testing.T) {
	c := New(Options{History: &sliceHistory{err: errors.New("redis down")}})
	res := c.Compose(context.Background(), "feeling low", "")
	assert.Equal(t, MoodLow, res.Signals.Mood)
	assert.NotEmpty(t, res.Guidance)
}

// blockingHistory waits for the caller's deadline on every call.
type blockingHistory struct{ calls int }

func (h *blockingHistory) Recent(ctx context.Context) ([]string, error) {
	h.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}

func (h *blockingHistory) Remember(ctx context.Context, _ string) error {
	h.calls++
	<-ctx.Done()
	return ctx.Err()
}

func TestSlowHistoryIsBounded(t *testing.T) {
	h := &blockingHistory{}
	c := New(Options{History: h, HistoryTimeout: 20 * time.Millisecond})
	start := time.Now()
	res := c.Compose(context.Background(), "so tired", "")
	assert.NotEmpty(t, res.Guidance)
	assert.Equal(t, 2, h.calls)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPromptModeQuestions(t *testing.T) {
	c := New(Options{})
	res := c.Compose(context.Background(), "what should i focus on", ModePrompt)
	require.Len(t, res.Questions, MaxQuestions)
	seen := map[string]bool{}
	for _, q := range res.Questions {
		assert.False(t, seen[q])
		seen[q] = true
		assert.True(t, strings.HasSuffix(q, "?"))
	}
}

func TestFinishForcesCrisisAndEnvelope(t *testing.T) {
	c := New(Options{})
	a := c.Analyze("i want to die", "")
	res := c.Finish(a, strings.Repeat("Take one slow breath and name one thing you can see. ", 20))
	assert.Equal(t, SourceProvider, res.Source)
	assert.True(t, strings.HasSuffix(res.Guidance, CrisisLine))
	assert.LessOrEqual(t, utf8.RuneCountInString(res.Guidance), a.Envelope.Max)

	short := c.Finish(c.Analyze("fine today", ""), "Rest well.")
	assert.Contains(t, short.Guidance, closingNudge)
	assert.NotContains(t, short.Guidance, CrisisLine)
}
