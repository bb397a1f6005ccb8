package oracle

import (
	"strings"
	"sync"
)

// similarityThreshold above which two question texts count as duplicates.
const similarityThreshold = 0.6

// QuestionCache remembers question texts already generated for one session
// so retries do not hand the candidate near-identical questions. One cache
// is owned per interview and dropped with it; there is no process-wide
// state.
type QuestionCache struct {
	mu   sync.Mutex
	seen []string
}

func NewQuestionCache() *QuestionCache {
	return &QuestionCache{}
}

// Seen reports whether text duplicates (or closely resembles) a question
// already recorded in this cache.
func (c *QuestionCache) Seen(text string) bool {
	normalized := normalize(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.seen {
		if existing == normalized || similarity(existing, normalized) > similarityThreshold {
			return true
		}
	}
	return false
}

func (c *QuestionCache) Add(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, normalize(text))
}

func (c *QuestionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// similarity is the word-level Jaccard index of two texts.
func similarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		set[w] = true
	}
	return set
}
