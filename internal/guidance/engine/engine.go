package engine

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/yungbote/wellspring-backend/internal/platform/ctxutil"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

// History remembers recently emitted guidance, most recent first.
type History interface {
	Recent(ctx context.Context) ([]string, error)
	Remember(ctx context.Context, text string) error
}

// defaultHistoryTimeout bounds each history call made while the composer lock is held.
const defaultHistoryTimeout = 300 * time.Millisecond

type Options struct {
	History History
	// HistoryTimeout bounds each Recent and Remember call; defaults to 300ms.
	HistoryTimeout time.Duration
	// Now drives the day index; defaults to time.Now.
	Now    func() time.Time
	Logger *logger.Logger
}

// Composer is the rules-based guidance generator. It is safe for concurrent
// use; the history check and update run under one lock.
type Composer struct {
	mu             sync.Mutex
	history        History
	historyTimeout time.Duration
	now            func() time.Time
	log            *logger.Logger
}

func New(opts Options) *Composer {
	c := &Composer{history: opts.History, historyTimeout: opts.HistoryTimeout, now: opts.Now, log: opts.Logger}
	if c.historyTimeout <= 0 {
		c.historyTimeout = defaultHistoryTimeout
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	c.log = c.log.With("service", "GuidanceComposer")
	return c
}

// Analyze derives everything except the guidance paragraph. It never fails.
func (c *Composer) Analyze(text, mode string) Analysis {
	normalized := Normalize(text)
	working := Compress(normalized)
	seed := Seed(normalized)
	sig := ExtractSignals(working)

	a := Analysis{
		Normalized:  normalized,
		Working:     working,
		RawLength:   utf8.RuneCountInString(normalized),
		Seed:        seed,
		Signals:     sig,
		Suggestions: planSuggestions(sig, seed),
		Summary:     summarize(sig, working),
	}
	a.Envelope = EnvelopeFor(a.RawLength)
	if mode == ModePrompt {
		a.Questions = planQuestions(seed)
	}
	return a
}

// Compose builds a complete rules-based result and records the guidance in
// history.
func (c *Composer) Compose(ctx context.Context, text, mode string) Result {
	ctx = ctxutil.Default(ctx)
	a := c.Analyze(text, mode)
	idx := profileIndex(a.Seed, DayIndex(c.now()))

	// Every request queues here behind the history round-trips; each call is
	// bounded by historyTimeout and a timeout counts as an empty history.
	c.mu.Lock()
	defer c.mu.Unlock()

	guidance := c.render(a, idx, 0, 0)
	if tooSimilar(guidance, c.recent(ctx)) {
		guidance = c.render(a, (idx+1)%len(profiles), perturbOpener, perturbQuestion)
	}
	c.remember(ctx, guidance)

	return a.result(guidance, SourceRules)
}

// Finish fits externally generated text to the analysis envelope and forces
// the crisis line when a risk flag is set.
func (c *Composer) Finish(a Analysis, text string) Result {
	crisis := ""
	if a.Signals.HasRisk() {
		crisis = CrisisLine
	}
	return a.result(placeCrisis(text, crisis, false, a.Envelope), SourceProvider)
}

func (c *Composer) render(a Analysis, idx int, openerShift, questionShift uint32) string {
	p := profiles[idx]
	f := fragments{
		opener: planOpener(a.Signals.Mood, p.OpenerVariant, a.Seed+openerShift),
		body:   planBody(a.Signals, a.Seed),
		action: planAction(a.Suggestions, a.Seed),
		ask:    planQuestion(p.QuestionVariant, a.Seed+questionShift),
	}
	if a.Signals.HasRisk() {
		f.crisis = CrisisLine
	}
	return assemble(p, f, a.Envelope)
}

func (c *Composer) recent(ctx context.Context) []string {
	if c.history == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.historyTimeout)
	defer cancel()
	prev, err := c.history.Recent(ctx)
	if err != nil {
		c.log.Warn("history read failed, continuing without it", "error", err)
		return nil
	}
	return prev
}

func (c *Composer) remember(ctx context.Context, guidance string) {
	if c.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.historyTimeout)
	defer cancel()
	if err := c.history.Remember(ctx, guidance); err != nil {
		c.log.Warn("history write failed", "error", err)
	}
}

func (a Analysis) result(guidance, source string) Result {
	return Result{
		Guidance:    guidance,
		Summary:     a.Summary,
		Signals:     a.Signals,
		Suggestions: a.Suggestions,
		Questions:   a.Questions,
		Source:      source,
	}
}
