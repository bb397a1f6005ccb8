package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/intervu-ai/intervu-server/internal/config"
	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/interview"
	"github.com/intervu-ai/intervu-server/internal/oracle"
	"github.com/intervu-ai/intervu-server/internal/timer"
)

// trackingSessionRepo is memSessionRepo plus create/delete bookkeeping, used
// to observe how Start supersedes previous sessions.
type trackingSessionRepo struct {
	memSessionRepo
	mu      sync.Mutex
	deleted []uuid.UUID
}

func (r *trackingSessionRepo) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *trackingSessionRepo) Update(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *trackingSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// trackingRecordingRepo is memRecordingRepo plus delete bookkeeping, used to
// observe the recording cascade when a session is superseded.
type trackingRecordingRepo struct {
	memRecordingRepo
	deleted []uuid.UUID
}

func (r *trackingRecordingRepo) Delete(_ context.Context, blobID uuid.UUID) error {
	r.deleted = append(r.deleted, blobID)
	kept := r.recordings[:0]
	for _, rec := range r.recordings {
		if rec.BlobID != blobID {
			kept = append(kept, rec)
		}
	}
	r.recordings = kept
	return nil
}

type downOracle struct{}

func (downOracle) GenerateQuestion(context.Context, domain.Difficulty, string) (*domain.Question, error) {
	return nil, errors.New("down")
}

func (downOracle) GradeAnswer(context.Context, domain.Question, domain.Answer) (oracle.Grade, error) {
	return oracle.Grade{}, errors.New("down")
}

func (downOracle) GenerateFinalSummary(context.Context, []domain.Answer, []domain.Question) (oracle.Summary, error) {
	return oracle.Summary{}, errors.New("down")
}

func newInterviewFixture(t *testing.T) (domain.InterviewService, *trackingSessionRepo, *memCandidateRepo, *trackingRecordingRepo, *interview.Hub) {
	t.Helper()

	candidate := domain.Candidate{ID: uuid.New(), Name: "Ada", ResumeText: "ten years of Go and distributed systems"}
	candidates := &memCandidateRepo{candidates: []domain.Candidate{candidate}}
	sessions := &trackingSessionRepo{memSessionRepo: memSessionRepo{sessions: map[uuid.UUID]*domain.Session{}}}
	recordings := &trackingRecordingRepo{}
	hub := interview.NewHub()

	svc := NewInterviewService(
		sessions,
		candidates,
		recordings,
		oracle.NewRetrier(downOracle{}, 1, 0, zap.NewNop()),
		hub,
		nil,
		nil,
		timer.SystemClock(),
		config.InterviewConfig{
			QuestionPlan: []domain.Difficulty{
				domain.DifficultyEasy, domain.DifficultyEasy,
				domain.DifficultyMedium, domain.DifficultyMedium,
				domain.DifficultyHard, domain.DifficultyHard,
			},
			AutoStartSec: 5,
			StaleAfter:   30 * time.Minute,
		},
		zap.NewNop(),
	)

	return svc, sessions, candidates, recordings, hub
}

func TestStartBuildsFullQuestionPlan(t *testing.T) {
	svc, sessions, candidates, _, hub := newInterviewFixture(t)

	state, err := svc.Start(context.Background(), candidates.candidates[0].ID)
	require.NoError(t, err)

	assert.Equal(t, domain.PhasePreparing, state.Phase)
	assert.Equal(t, 6, state.TotalQuestions)
	assert.Equal(t, 0, state.CurrentIndex)
	require.NotNil(t, state.Question)
	assert.Equal(t, domain.DifficultyEasy, state.Question.Difficulty)
	assert.Equal(t, 20, state.Question.TimeLimitSec)

	session, err := sessions.FindByID(context.Background(), state.SessionID)
	require.NoError(t, err)
	require.Len(t, session.Questions, 6)

	// The fallback pool holds two questions per tier and the plan asks for
	// two per tier, so even a dead oracle yields six distinct questions.
	seen := map[string]bool{}
	for _, q := range session.Questions {
		assert.False(t, seen[q.Text], "duplicate question in plan: %s", q.Text)
		seen[q.Text] = true
	}

	_, live := hub.Get(state.SessionID)
	assert.True(t, live)
}

func TestStartSupersedesPreviousSession(t *testing.T) {
	svc, sessions, candidates, _, _ := newInterviewFixture(t)
	candidateID := candidates.candidates[0].ID

	first, err := svc.Start(context.Background(), candidateID)
	require.NoError(t, err)

	second, err := svc.Start(context.Background(), candidateID)
	require.NoError(t, err)

	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Contains(t, sessions.deleted, first.SessionID)

	_, err = sessions.FindByID(context.Background(), first.SessionID)
	assert.Error(t, err)
}

func TestStartCleansUpSupersededRecordings(t *testing.T) {
	svc, _, candidates, recordings, _ := newInterviewFixture(t)
	candidateID := candidates.candidates[0].ID

	first, err := svc.Start(context.Background(), candidateID)
	require.NoError(t, err)

	blobID := uuid.New()
	recordings.recordings = append(recordings.recordings, domain.Recording{
		BlobID:    blobID,
		SessionID: first.SessionID,
		FileID:    "file-1",
	})

	second, err := svc.Start(context.Background(), candidateID)
	require.NoError(t, err)
	require.NotEqual(t, first.SessionID, second.SessionID)

	assert.Contains(t, recordings.deleted, blobID)
	remaining, err := recordings.FindBySessionID(context.Background(), first.SessionID)
	require.NoError(t, err)
	assert.Empty(t, remaining, "superseded session must not leave orphaned recordings")
}

func TestStartUnknownCandidate(t *testing.T) {
	svc, _, _, _, _ := newInterviewFixture(t)

	_, err := svc.Start(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestCommandsAgainstUnknownSession(t *testing.T) {
	svc, _, _, _, _ := newInterviewFixture(t)

	_, err := svc.GetState(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.SubmitAnswer(context.Background(), uuid.New(), &domain.SubmitAnswerRequest{Text: "x"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUploadRecordingWithoutStorage(t *testing.T) {
	svc, _, candidates, _, _ := newInterviewFixture(t)

	state, err := svc.Start(context.Background(), candidates.candidates[0].ID)
	require.NoError(t, err)

	_, err = svc.UploadRecording(context.Background(), state.SessionID, nil)
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestFullFlowThroughService(t *testing.T) {
	svc, sessions, candidates, _, _ := newInterviewFixture(t)

	state, err := svc.Start(context.Background(), candidates.candidates[0].ID)
	require.NoError(t, err)
	sessionID := state.SessionID

	for i := 0; i < 6; i++ {
		state, err = svc.SkipPreparation(context.Background(), sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.PhaseReadyToAnswer, state.Phase)

		state, err = svc.StartAnswer(context.Background(), sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.PhaseAnswering, state.Phase)

		state, err = svc.SubmitAnswer(context.Background(), sessionID, &domain.SubmitAnswerRequest{Text: "answer"})
		require.NoError(t, err)
	}

	assert.Equal(t, domain.PhaseCompleted, state.Phase)
	assert.Equal(t, 6, state.AnsweredQuestionCount)
	require.NotNil(t, state.FinalScore)
	// The oracle is down throughout: every grade falls back to 0, so the
	// derived final score is 0 as well.
	assert.Equal(t, 0, *state.FinalScore)

	session, err := sessions.FindByID(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, session.Status)
}
