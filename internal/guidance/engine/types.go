package engine

// Mood labels, checked in this priority order by the extractor.
const (
	MoodOverwhelmed = "overwhelmed"
	MoodTired       = "tired"
	MoodLow         = "low"
	MoodFrustrated  = "frustrated"
	MoodNeutral     = "neutral"
)

// RiskCrisis is the only risk flag the extractor emits.
const RiskCrisis = "crisis"

const (
	SourceRules    = "rules"
	SourceProvider = "provider"
)

const (
	ModeJournal = "journal"
	ModePrompt  = "prompt"
)

const (
	MaxSuggestions = 3
	MaxQuestions   = 5
)

type Signals struct {
	Mood      string   `json:"mood"`
	Stressors []string `json:"stressors"`
	RiskFlags []string `json:"risk_flags"`
}

// HasStressor reports whether tag was detected.
func (s Signals) HasStressor(tag string) bool {
	for _, t := range s.Stressors {
		if t == tag {
			return true
		}
	}
	return false
}

func (s Signals) HasRisk() bool { return len(s.RiskFlags) > 0 }

type Result struct {
	Guidance    string   `json:"guidance"`
	Summary     string   `json:"summary"`
	Signals     Signals  `json:"signals"`
	Suggestions []string `json:"suggestions"`
	Questions   []string `json:"questions,omitempty"`
	Source      string   `json:"source"`
}

// Analysis is everything derived from the input except the guidance paragraph.
// Provider-backed guidance reuses it so signals stay deterministic.
type Analysis struct {
	Normalized  string
	Working     string
	RawLength   int
	Seed        uint32
	Signals     Signals
	Suggestions []string
	Questions   []string
	Summary     string
	Envelope    Envelope
}
