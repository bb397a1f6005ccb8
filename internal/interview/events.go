package interview

import (
	"github.com/google/uuid"
	"github.com/intervu-ai/intervu-server/internal/domain"
)

type EventType string

const (
	EventPhaseChanged     EventType = "phase_changed"
	EventTick             EventType = "tick"
	EventGradingStarted   EventType = "grading_started"
	EventGradingFinished  EventType = "grading_finished"
	EventSessionCompleted EventType = "session_completed"
)

// Event is pushed to presentation-layer subscribers on every observable
// controller transition and on each countdown tick.
type Event struct {
	Type          EventType    `json:"type"`
	SessionID     uuid.UUID    `json:"session_id"`
	Phase         domain.Phase `json:"phase"`
	QuestionIndex int          `json:"question_index"`
	RemainingSec  int          `json:"remaining_sec"`
	Score         *int         `json:"score,omitempty"`
	Feedback      string       `json:"feedback,omitempty"`
	FinalScore    *int         `json:"final_score,omitempty"`
}

const subscriberBuffer = 16
