package engine

import "strings"

// Stressor tags.
const (
	StressorExams         = "exams"
	StressorDeadlines     = "deadlines"
	StressorAssignments   = "assignments"
	StressorSleep         = "sleep"
	StressorFamily        = "family"
	StressorSchool        = "school"
	StressorTeam          = "team"
	StressorProject       = "project"
	StressorWork          = "work"
	StressorMoney         = "money"
	StressorRelationships = "relationships"
	StressorHealth        = "health"
)

// stressorLexicon maps raw lexicon terms to their canonical tag. Several terms
// collapse to one tag so the output never carries synonyms side by side.
var stressorLexicon = []struct {
	term string
	tag  string
}{
	{"exam", StressorExams},
	{"exams", StressorExams},
	{"test", StressorExams},
	{"tests", StressorExams},
	{"midterm", StressorExams},
	{"finals", StressorExams},
	{"quiz", StressorExams},
	{"deadline", StressorDeadlines},
	{"due tomorrow", StressorDeadlines},
	{"due date", StressorDeadlines},
	{"homework", StressorAssignments},
	{"assignment", StressorAssignments},
	{"essay", StressorAssignments},
	{"sleep", StressorSleep},
	{"insomnia", StressorSleep},
	{"awake all night", StressorSleep},
	{"family", StressorFamily},
	{"parents", StressorFamily},
	{"my mom", StressorFamily},
	{"my dad", StressorFamily},
	{"school", StressorSchool},
	{"class", StressorSchool},
	{"college", StressorSchool},
	{"university", StressorSchool},
	{"team", StressorTeam},
	{"teammate", StressorTeam},
	{"group project", StressorTeam},
	{"coworker", StressorTeam},
	{"project", StressorProject},
	{"my job", StressorWork},
	{"at work", StressorWork},
	{"workload", StressorWork},
	{"boss", StressorWork},
	{"money", StressorMoney},
	{"my rent", StressorMoney},
	{"pay rent", StressorMoney},
	{"bills", StressorMoney},
	{"debt", StressorMoney},
	{"tuition", StressorMoney},
	{"friend", StressorRelationships},
	{"relationship", StressorRelationships},
	{"breakup", StressorRelationships},
	{"partner", StressorRelationships},
	{"sick", StressorHealth},
	{"health", StressorHealth},
	{"illness", StressorHealth},
}

// moodRules are scanned top to bottom; the first rule with any hit wins.
var moodRules = []struct {
	mood     string
	keywords []string
}{
	{MoodOverwhelmed, []string{"overwhelm", "too much", "can't cope", "cant cope", "anxious", "anxiety", "panic", "stressed", "drowning", "so much to do"}},
	{MoodTired, []string{"tired", "exhausted", "drained", "burnt out", "burned out", "burnout", "no energy", "fatigue", "can't sleep", "cant sleep", "insomnia"}},
	{MoodLow, []string{"sad", "feeling down", "feel down", "feeling low", "feel low", "lonely", "hopeless", "empty", "depressed", "unmotivated", "worthless", "crying"}},
	{MoodFrustrated, []string{"frustrat", "angry", "annoyed", "irritated", "fed up", "pissed", "unfair"}},
}

// crisisPhrases are checked independently of mood and stressors.
var crisisPhrases = []string{
	"kill myself",
	"want to die",
	"wanna die",
	"end my life",
	"suicide",
	"suicidal",
	"self harm",
	"self-harm",
	"hurt myself",
	"no reason to live",
	"better off dead",
	"don't want to be alive",
	"dont want to be alive",
}

var (
	examFamily = []string{StressorExams, StressorDeadlines, StressorAssignments}
	teamFamily = []string{StressorTeam, StressorProject}
)

// ExtractSignals derives mood, stressors and risk flags from normalized text.
// No hits is a valid outcome: neutral mood and empty sets.
func ExtractSignals(text string) Signals {
	return Signals{
		Mood:      detectMood(text),
		Stressors: detectStressors(text),
		RiskFlags: detectRisk(text),
	}
}

func detectStressors(text string) []string {
	out := []string{}
	if text == "" {
		return out
	}
	seen := map[string]bool{}
	for _, entry := range stressorLexicon {
		if seen[entry.tag] || !strings.Contains(text, entry.term) {
			continue
		}
		seen[entry.tag] = true
		out = append(out, entry.tag)
	}
	return out
}

func detectMood(text string) string {
	for _, rule := range moodRules {
		if containsAny(text, rule.keywords) {
			return rule.mood
		}
	}
	return MoodNeutral
}

func detectRisk(text string) []string {
	if containsAny(text, crisisPhrases) {
		return []string{RiskCrisis}
	}
	return []string{}
}

func containsAny(text string, terms []string) bool {
	if text == "" {
		return false
	}
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func hasAnyStressor(s Signals, tags []string) bool {
	for _, t := range tags {
		if s.HasStressor(t) {
			return true
		}
	}
	return false
}
