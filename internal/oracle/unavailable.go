package oracle

import (
	"context"
	"errors"

	"github.com/intervu-ai/intervu-server/internal/domain"
)

var ErrUnavailable = errors.New("scoring oracle is not configured")

type unavailableOracle struct{}

// NewUnavailableOracle is the oracle used when no API key is configured.
// Every call fails, which routes the retrier straight to its fallbacks, so
// interviews still run end to end with canned questions and zero grades.
func NewUnavailableOracle() Oracle {
	return unavailableOracle{}
}

func (unavailableOracle) GenerateQuestion(context.Context, domain.Difficulty, string) (*domain.Question, error) {
	return nil, ErrUnavailable
}

func (unavailableOracle) GradeAnswer(context.Context, domain.Question, domain.Answer) (Grade, error) {
	return Grade{}, ErrUnavailable
}

func (unavailableOracle) GenerateFinalSummary(context.Context, []domain.Answer, []domain.Question) (Summary, error) {
	return Summary{}, ErrUnavailable
}
