// Package oracle talks to the external question-generation and grading
// service. The raw client can fail; the Retrier wrapper makes every
// operation total so the interview flow never blocks on oracle availability.
package oracle

import (
	"context"
	"errors"

	"github.com/intervu-ai/intervu-server/internal/domain"
)

var (
	ErrEmptyQuestion   = errors.New("oracle returned an empty question")
	ErrMalformedGrade  = errors.New("oracle returned a malformed grade payload")
	ErrMalformedResult = errors.New("oracle returned a malformed summary payload")
)

// Grade is one graded answer on the 0-10 scale.
type Grade struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Summary is the final verdict for a completed session on the 0-100 scale.
type Summary struct {
	FinalScore int    `json:"final_score"`
	Summary    string `json:"summary"`
}

// Oracle is the fallible wire-facing contract. Payloads are validated at
// this boundary; malformed responses surface as errors here and never reach
// the controller.
type Oracle interface {
	GenerateQuestion(ctx context.Context, difficulty domain.Difficulty, resumeText string) (*domain.Question, error)
	GradeAnswer(ctx context.Context, question domain.Question, answer domain.Answer) (Grade, error)
	GenerateFinalSummary(ctx context.Context, answers []domain.Answer, questions []domain.Question) (Summary, error)
}
