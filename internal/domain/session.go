package domain

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TimeLimitSec is the answer countdown for a difficulty tier. Fixed per
// tier; a Question carries its own copy so the limit is immutable even if
// the tier defaults ever change.
func (d Difficulty) TimeLimitSec() int {
	switch d {
	case DifficultyEasy:
		return 20
	case DifficultyMedium:
		return 60
	case DifficultyHard:
		return 120
	}
	return 60
}

// PreparationSec is the read-the-question countdown shown before the answer
// timer can start. Never persisted; restarts in full on resume.
func (d Difficulty) PreparationSec() int {
	switch d {
	case DifficultyEasy:
		return 15
	case DifficultyMedium:
		return 25
	case DifficultyHard:
		return 30
	}
	return 20
}

type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusPaused     SessionStatus = "paused"
)

// Phase is one state of the per-question interview state machine.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhasePreparing     Phase = "preparing"
	PhaseReadyToAnswer Phase = "ready_to_answer"
	PhaseAnswering     Phase = "answering"
	PhaseGrading       Phase = "grading"
	PhaseCompleting    Phase = "completing"
	PhaseCompleted     Phase = "completed"
)

// Question is immutable once generated.
type Question struct {
	ID           uuid.UUID  `json:"id"`
	Text         string     `json:"text"`
	Difficulty   Difficulty `json:"difficulty"`
	TimeLimitSec int        `json:"time_limit_sec"`
	Rubric       string     `json:"rubric,omitempty"`
	GradingHints string     `json:"grading_hints,omitempty"`
}

type Answer struct {
	ID              uuid.UUID `json:"id"`
	QuestionID      uuid.UUID `json:"question_id"`
	Text            string    `json:"text"`
	StartTime       time.Time `json:"start_time"`
	SubmitTime      time.Time `json:"submit_time"`
	DurationSec     int       `json:"duration_sec"`
	AutoSubmitted   bool      `json:"auto_submitted"`
	RecordingBlobID string    `json:"recording_blob_id,omitempty"`
	LlmScore        *int      `json:"llm_score,omitempty"`
	LlmFeedback     string    `json:"llm_feedback,omitempty"`
}

// Session is the aggregate root of one interview attempt. The question list
// is fixed at creation. QuestionStartTime is the only durable timer anchor:
// set when the candidate starts answering the current question, cleared on
// advance, absent during preparation and after completion.
type Session struct {
	ID                uuid.UUID     `json:"id"`
	CandidateID       uuid.UUID     `json:"candidate_id"`
	Questions         []Question    `json:"questions"`
	CurrentIndex      int           `json:"current_index"`
	Answers           []Answer      `json:"answers"`
	Status            SessionStatus `json:"status"`
	QuestionStartTime *time.Time    `json:"question_start_time,omitempty"`
	FinalScore        *int          `json:"final_score,omitempty"`
	FinalSummary      string        `json:"final_summary,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// CurrentQuestion returns the question at CurrentIndex, or false when the
// index is out of range (completed sessions).
func (s *Session) CurrentQuestion() (Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// OnLastQuestion reports whether the current question is the final one.
func (s *Session) OnLastQuestion() bool {
	return s.CurrentIndex >= len(s.Questions)-1
}

// SessionState is the controller-facing view of a live session, rendered by
// the presentation layer.
type SessionState struct {
	SessionID             uuid.UUID     `json:"session_id"`
	CandidateID           uuid.UUID     `json:"candidate_id"`
	Status                SessionStatus `json:"status"`
	Phase                 Phase         `json:"phase"`
	CurrentIndex          int           `json:"current_index"`
	TotalQuestions        int           `json:"total_questions"`
	Question              *Question     `json:"question,omitempty"`
	PreparationRemaining  int           `json:"preparation_remaining_sec"`
	AutoStartRemaining    int           `json:"auto_start_remaining_sec"`
	AnswerRemaining       int           `json:"answer_remaining_sec"`
	FinalScore            *int          `json:"final_score,omitempty"`
	FinalSummary          string        `json:"final_summary,omitempty"`
	AnsweredQuestionCount int           `json:"answered_question_count"`
}

type SubmitAnswerRequest struct {
	Text            string `json:"text"`
	RecordingBlobID string `json:"recording_blob_id" validate:"omitempty,uuid4"`
}

type StartInterviewRequest struct {
	CandidateID uuid.UUID `json:"candidate_id" validate:"required"`
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)
	FindByCandidateID(ctx context.Context, candidateID uuid.UUID) (*Session, error)
	Update(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindInProgressUpdatedBefore(ctx context.Context, cutoff time.Time) ([]Session, error)
	CountByStatus(ctx context.Context, status SessionStatus) (int64, error)
	AverageFinalScore(ctx context.Context) (float64, error)
}

type InterviewService interface {
	Start(ctx context.Context, candidateID uuid.UUID) (*SessionState, error)
	GetState(ctx context.Context, sessionID uuid.UUID) (*SessionState, error)
	StartAnswer(ctx context.Context, sessionID uuid.UUID) (*SessionState, error)
	SkipPreparation(ctx context.Context, sessionID uuid.UUID) (*SessionState, error)
	SubmitAnswer(ctx context.Context, sessionID uuid.UUID, req *SubmitAnswerRequest) (*SessionState, error)
	Exit(ctx context.Context, sessionID uuid.UUID) (*SessionState, error)
	UploadRecording(ctx context.Context, sessionID uuid.UUID, file *multipart.FileHeader) (*Recording, error)
}
