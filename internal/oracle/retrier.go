package oracle

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/metrics"
	"go.uber.org/zap"
)

const (
	// FallbackFeedback is attached to an answer when grading stayed
	// unavailable after retries. The fallback score is 0: ungradable
	// answers are scored punitively rather than given a free midpoint,
	// so a dead oracle cannot inflate results.
	FallbackFeedback   = "Automatic grading unavailable. Answer saved for manual review."
	fallbackGradeScore = 0

	fallbackSummaryText = "Interview completed. Automatic summary was unavailable; the final score is the average of per-question grades. Manual review recommended for detailed feedback."
)

// fallbackQuestions keeps the interview moving when generation is down.
// Rotated per tier so a multi-question plan does not repeat itself.
var fallbackQuestions = map[domain.Difficulty][]string{
	domain.DifficultyEasy: {
		"Tell me about your experience with web development and the technologies you have worked with.",
		"What is the difference between a library and a framework? Give an example of each from your own work.",
	},
	domain.DifficultyMedium: {
		"Describe a challenging project you worked on and how you overcame the technical difficulties.",
		"How do you approach debugging an issue that only appears in production?",
	},
	domain.DifficultyHard: {
		"Explain your approach to system design and how you ensure scalability in your applications.",
		"How would you design an API that must stay backwards compatible while the data model underneath it keeps evolving?",
	},
}

// Retrier wraps an Oracle with bounded retry and total fallbacks. Every
// method always produces a usable result; oracle failures degrade, they
// never propagate.
type Retrier struct {
	oracle   Oracle
	attempts int
	delay    time.Duration
	log      *zap.Logger

	mu          sync.Mutex
	fallbackIdx map[domain.Difficulty]int
}

func NewRetrier(oracle Oracle, attempts int, delay time.Duration, log *zap.Logger) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrier{
		oracle:      oracle,
		attempts:    attempts,
		delay:       delay,
		log:         log,
		fallbackIdx: make(map[domain.Difficulty]int),
	}
}

// GenerateQuestion retries generation until it yields a question not already
// seen in cache, then falls back to a generic question for the tier. The
// returned question always carries the tier's fixed time limit.
func (r *Retrier) GenerateQuestion(ctx context.Context, difficulty domain.Difficulty, resumeText string, cache *QuestionCache) *domain.Question {
	for attempt := 1; attempt <= r.attempts; attempt++ {
		q, err := r.oracle.GenerateQuestion(ctx, difficulty, resumeText)
		if err == nil && (cache == nil || !cache.Seen(q.Text)) {
			metrics.OracleRequests.WithLabelValues("generate_question", "success").Inc()
			if cache != nil {
				cache.Add(q.Text)
			}
			return q
		}

		if err != nil {
			metrics.OracleRequests.WithLabelValues("generate_question", "error").Inc()
			r.log.Warn("question generation failed",
				zap.String("difficulty", string(difficulty)),
				zap.Int("attempt", attempt),
				zap.Error(err))
		} else {
			metrics.OracleRequests.WithLabelValues("generate_question", "duplicate").Inc()
			r.log.Warn("question generation returned a duplicate",
				zap.String("difficulty", string(difficulty)),
				zap.Int("attempt", attempt))
		}

		if attempt < r.attempts && !r.wait(ctx) {
			break
		}
	}

	metrics.OracleFallbacks.WithLabelValues("generate_question").Inc()
	q := r.fallbackQuestion(difficulty)
	if cache != nil {
		cache.Add(q.Text)
	}
	return q
}

// GradeAnswer retries grading, then falls back to the documented sentinel
// grade. It never fails: the controller always receives a score.
func (r *Retrier) GradeAnswer(ctx context.Context, question domain.Question, answer domain.Answer) Grade {
	for attempt := 1; attempt <= r.attempts; attempt++ {
		grade, err := r.oracle.GradeAnswer(ctx, question, answer)
		if err == nil {
			metrics.OracleRequests.WithLabelValues("grade_answer", "success").Inc()
			return grade
		}

		metrics.OracleRequests.WithLabelValues("grade_answer", "error").Inc()
		r.log.Warn("grading failed",
			zap.String("question_id", question.ID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < r.attempts && !r.wait(ctx) {
			break
		}
	}

	metrics.OracleFallbacks.WithLabelValues("grade_answer").Inc()
	return Grade{Score: fallbackGradeScore, Feedback: FallbackFeedback}
}

// GenerateFinalSummary retries the summary call, then derives the final
// score deterministically from the per-answer grades.
func (r *Retrier) GenerateFinalSummary(ctx context.Context, answers []domain.Answer, questions []domain.Question) Summary {
	for attempt := 1; attempt <= r.attempts; attempt++ {
		summary, err := r.oracle.GenerateFinalSummary(ctx, answers, questions)
		if err == nil {
			metrics.OracleRequests.WithLabelValues("final_summary", "success").Inc()
			return summary
		}

		metrics.OracleRequests.WithLabelValues("final_summary", "error").Inc()
		r.log.Warn("final summary failed",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < r.attempts && !r.wait(ctx) {
			break
		}
	}

	metrics.OracleFallbacks.WithLabelValues("final_summary").Inc()
	return Summary{
		FinalScore: FallbackFinalScore(answers),
		Summary:    fallbackSummaryText,
	}
}

// FallbackFinalScore maps the mean per-answer grade (0-10) onto the 0-100
// scale: round(100 * mean / 10).
func FallbackFinalScore(answers []domain.Answer) int {
	if len(answers) == 0 {
		return 0
	}
	total := 0
	for _, a := range answers {
		if a.LlmScore != nil {
			total += *a.LlmScore
		}
	}
	mean := float64(total) / float64(len(answers))
	return clamp(int(math.Round(mean*10)), 0, 100)
}

func (r *Retrier) fallbackQuestion(difficulty domain.Difficulty) *domain.Question {
	pool := fallbackQuestions[difficulty]
	if len(pool) == 0 {
		pool = fallbackQuestions[domain.DifficultyMedium]
	}

	r.mu.Lock()
	idx := r.fallbackIdx[difficulty]
	r.fallbackIdx[difficulty] = idx + 1
	r.mu.Unlock()

	return &domain.Question{
		ID:           uuid.New(),
		Text:         pool[idx%len(pool)],
		Difficulty:   difficulty,
		TimeLimitSec: difficulty.TimeLimitSec(),
		Rubric:       "Clear explanation with relevant examples",
		GradingHints: "Look for technical depth and practical experience",
	}
}

// wait sleeps the fixed retry delay, returning false if the context was
// cancelled first.
func (r *Retrier) wait(ctx context.Context) bool {
	if r.delay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(r.delay):
		return true
	}
}
