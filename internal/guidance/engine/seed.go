package engine

import (
	"hash/fnv"
	"time"
)

const emptyPlaceholder = "(empty)"

// Salts decorrelate sibling choices drawn from the same seed.
const (
	saltOpener     = 11
	saltBody       = 23
	saltAction     = 31
	saltQuestion   = 41
	saltTipGeneral = 3
	saltTipRotated = 17
	saltTipSleep   = 5
	saltTipExam    = 7
	saltTipTeam    = 13
	saltQuestions  = 19

	// applied to the opener and question seeds when regenerating
	perturbOpener   = 7
	perturbQuestion = 13
)

// Seed is the 32-bit FNV-1a hash of the normalized text.
func Seed(normalized string) uint32 {
	if normalized == "" {
		normalized = emptyPlaceholder
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalized))
	return h.Sum32()
}

// DayIndex counts whole UTC days since the Unix epoch.
func DayIndex(t time.Time) uint32 {
	secs := t.Unix()
	if secs < 0 {
		return 0
	}
	return uint32(secs / 86400)
}

func pick(pool []string, seed uint32, salt int) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[index(len(pool), seed, salt)]
}

func index(n int, seed uint32, salt int) int {
	return int((uint64(seed) + uint64(salt)) % uint64(n))
}

// rotate returns pool shifted left by k positions.
func rotate(pool []string, k int) []string {
	if len(pool) == 0 {
		return pool
	}
	k %= len(pool)
	out := make([]string, 0, len(pool))
	out = append(out, pool[k:]...)
	return append(out, pool[:k]...)
}
