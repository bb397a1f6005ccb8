package config

import (
	"testing"

	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseQuestionPlan(t *testing.T) {
	plan := parseQuestionPlan("easy, Medium ,hard")
	assert.Equal(t, []domain.Difficulty{
		domain.DifficultyEasy,
		domain.DifficultyMedium,
		domain.DifficultyHard,
	}, plan)
}

func TestParseQuestionPlanSkipsUnknownTiers(t *testing.T) {
	plan := parseQuestionPlan("easy,expert,hard")
	assert.Equal(t, []domain.Difficulty{
		domain.DifficultyEasy,
		domain.DifficultyHard,
	}, plan)
}

func TestParseQuestionPlanDefaultsWhenEmpty(t *testing.T) {
	plan := parseQuestionPlan("")
	assert.Len(t, plan, 6)
	assert.Equal(t, domain.DifficultyEasy, plan[0])
	assert.Equal(t, domain.DifficultyHard, plan[5])
}
