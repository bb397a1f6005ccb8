package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type fakeSessionRepo struct {
	mu      sync.Mutex
	updates int
	last    domain.Session
}

func (r *fakeSessionRepo) Create(context.Context, *domain.Session) error { return nil }
func (r *fakeSessionRepo) FindByID(context.Context, uuid.UUID) (*domain.Session, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeSessionRepo) FindByCandidateID(context.Context, uuid.UUID) (*domain.Session, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeSessionRepo) Delete(context.Context, uuid.UUID) error { return nil }
func (r *fakeSessionRepo) FindInProgressUpdatedBefore(context.Context, time.Time) ([]domain.Session, error) {
	return nil, nil
}
func (r *fakeSessionRepo) CountByStatus(context.Context, domain.SessionStatus) (int64, error) {
	return 0, nil
}
func (r *fakeSessionRepo) AverageFinalScore(context.Context) (float64, error) { return 0, nil }

func (r *fakeSessionRepo) Update(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.last = *s
	return nil
}

func (r *fakeSessionRepo) lastUpdate() domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

type stubScoring struct {
	mu           sync.Mutex
	grade        oracle.Grade
	summary      oracle.Summary
	gradeCalls   int
	summaryCalls int
}

func (s *stubScoring) GradeAnswer(context.Context, domain.Question, domain.Answer) oracle.Grade {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gradeCalls++
	return s.grade
}

func (s *stubScoring) GenerateFinalSummary(context.Context, []domain.Answer, []domain.Question) oracle.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaryCalls++
	return s.summary
}

// blockingScoring parks grading until the session context is cancelled,
// simulating an in-flight oracle call racing an exit command.
type blockingScoring struct {
	started chan struct{}
}

func (s *blockingScoring) GradeAnswer(ctx context.Context, _ domain.Question, _ domain.Answer) oracle.Grade {
	close(s.started)
	<-ctx.Done()
	return oracle.Grade{Score: 0, Feedback: oracle.FallbackFeedback}
}

func (s *blockingScoring) GenerateFinalSummary(context.Context, []domain.Answer, []domain.Question) oracle.Summary {
	return oracle.Summary{FinalScore: 0, Summary: "n/a"}
}

func makeSession(difficulties ...domain.Difficulty) *domain.Session {
	questions := make([]domain.Question, len(difficulties))
	for i, d := range difficulties {
		questions[i] = domain.Question{
			ID:           uuid.New(),
			Text:         fmt.Sprintf("Question %d?", i+1),
			Difficulty:   d,
			TimeLimitSec: d.TimeLimitSec(),
		}
	}
	return &domain.Session{
		ID:          uuid.New(),
		CandidateID: uuid.New(),
		Questions:   questions,
		Answers:     []domain.Answer{},
		Status:      domain.SessionStatusInProgress,
	}
}

func sixQuestionPlan() []domain.Difficulty {
	return []domain.Difficulty{
		domain.DifficultyEasy, domain.DifficultyEasy,
		domain.DifficultyMedium, domain.DifficultyMedium,
		domain.DifficultyHard, domain.DifficultyHard,
	}
}

func newTestController(session *domain.Session, scoring ScoringOracle, clock *fakeClock) (*Controller, *fakeSessionRepo) {
	repo := &fakeSessionRepo{}
	c := NewController(session, repo, scoring, clock, Config{AutoStartSec: 5}, zap.NewNop())
	return c, repo
}

func assertInvariants(t *testing.T, s *domain.Session) {
	t.Helper()
	if s.Status == domain.SessionStatusInProgress {
		assert.Equal(t, s.CurrentIndex, len(s.Answers), "answers must track current index")
		assert.GreaterOrEqual(t, s.CurrentIndex, 0)
		assert.Less(t, s.CurrentIndex, len(s.Questions))
	}
	if s.Status == domain.SessionStatusCompleted {
		require.NotNil(t, s.FinalScore)
		assert.GreaterOrEqual(t, *s.FinalScore, 0)
		assert.LessOrEqual(t, *s.FinalScore, 100)
		assert.NotEmpty(t, s.FinalSummary)
	}
}

// Scenario A: every oracle call succeeds; six questions end in a completed
// session with six answers and the summary-provided final score.
func TestFullInterviewCompletes(t *testing.T) {
	session := makeSession(sixQuestionPlan()...)
	scoring := &stubScoring{
		grade:   oracle.Grade{Score: 8, Feedback: "Good answer."},
		summary: oracle.Summary{FinalScore: 82, Summary: "Strong performance overall."},
	}
	clock := newFakeClock()
	c, repo := newTestController(session, scoring, clock)

	c.Resume()
	assert.Equal(t, domain.PhasePreparing, c.Snapshot().Phase)

	for i := 0; i < 6; i++ {
		require.NoError(t, c.SkipPreparation())
		require.NoError(t, c.StartAnswer())
		clock.Advance(3 * time.Second)
		require.NoError(t, c.SubmitAnswer(fmt.Sprintf("answer %d", i+1), ""))
		assertInvariants(t, session)
	}

	assert.Equal(t, domain.PhaseCompleted, c.Snapshot().Phase)
	assert.Equal(t, domain.SessionStatusCompleted, session.Status)
	assert.Len(t, session.Answers, 6)
	require.NotNil(t, session.FinalScore)
	assert.Equal(t, 82, *session.FinalScore)
	assert.Equal(t, "Strong performance overall.", session.FinalSummary)
	assert.Equal(t, 6, scoring.gradeCalls)
	assert.Equal(t, 1, scoring.summaryCalls)
	assert.Nil(t, session.QuestionStartTime)

	persisted := repo.lastUpdate()
	assert.Equal(t, domain.SessionStatusCompleted, persisted.Status)

	for i, ans := range session.Answers {
		assert.Equal(t, session.Questions[i].ID, ans.QuestionID)
		assert.False(t, ans.AutoSubmitted)
		assert.Equal(t, 3, ans.DurationSec)
	}
}

// Scenario B: grading and summary fail on every attempt; answers carry the
// fallback score and the session still completes.
func TestGradingFailureStillCompletes(t *testing.T) {
	session := makeSession(sixQuestionPlan()...)
	failing := &failingOracle{}
	retrier := oracle.NewRetrier(failing, 2, 0, zap.NewNop())
	clock := newFakeClock()
	c, _ := newTestController(session, retrier, clock)

	c.Resume()
	for i := 0; i < 6; i++ {
		require.NoError(t, c.SkipPreparation())
		require.NoError(t, c.StartAnswer())
		require.NoError(t, c.SubmitAnswer("some answer", ""))
	}

	assert.Equal(t, domain.SessionStatusCompleted, session.Status)
	assert.Len(t, session.Answers, 6)
	for _, ans := range session.Answers {
		require.NotNil(t, ans.LlmScore)
		assert.Equal(t, 0, *ans.LlmScore)
		assert.Equal(t, oracle.FallbackFeedback, ans.LlmFeedback)
	}
	require.NotNil(t, session.FinalScore)
	assert.Equal(t, 0, *session.FinalScore)
	assert.NotEmpty(t, session.FinalSummary)
}

// Scenario C: exiting mid-question completes the session immediately with a
// zero score and the exit summary.
func TestExitMidQuestion(t *testing.T) {
	session := makeSession(sixQuestionPlan()...)
	scoring := &stubScoring{grade: oracle.Grade{Score: 7}}
	clock := newFakeClock()
	c, repo := newTestController(session, scoring, clock)

	c.Resume()
	require.NoError(t, c.SkipPreparation())
	require.NoError(t, c.StartAnswer())

	require.NoError(t, c.Exit())

	assert.Equal(t, domain.SessionStatusCompleted, session.Status)
	require.NotNil(t, session.FinalScore)
	assert.Equal(t, 0, *session.FinalScore)
	assert.Equal(t, ExitSummary, session.FinalSummary)
	assert.Equal(t, domain.PhaseCompleted, c.Snapshot().Phase)
	assert.Equal(t, domain.SessionStatusCompleted, repo.lastUpdate().Status)

	assert.ErrorIs(t, c.Exit(), ErrSessionFinished)
}

// Scenario D: a reload with time left on the answer clock re-enters
// answering with the remaining time recomputed from the persisted anchor.
func TestResumeReentersAnswering(t *testing.T) {
	session := makeSession(domain.DifficultyMedium)
	clock := newFakeClock()
	anchor := clock.Now().Add(-45 * time.Second)
	session.QuestionStartTime = &anchor

	c, _ := newTestController(session, &stubScoring{}, clock)
	c.Resume()

	state := c.Snapshot()
	assert.Equal(t, domain.PhaseAnswering, state.Phase)
	assert.Equal(t, 15, state.AnswerRemaining)
	assert.Empty(t, session.Answers)
}

func TestResumeExpiredAnchorAutoSubmits(t *testing.T) {
	session := makeSession(domain.DifficultyEasy, domain.DifficultyMedium)
	scoring := &stubScoring{grade: oracle.Grade{Score: 2, Feedback: "No answer."}}
	clock := newFakeClock()
	anchor := clock.Now().Add(-5 * time.Minute)
	session.QuestionStartTime = &anchor

	c, _ := newTestController(session, scoring, clock)
	c.Resume()

	require.Len(t, session.Answers, 1)
	assert.True(t, session.Answers[0].AutoSubmitted)
	assert.Empty(t, session.Answers[0].Text)
	assert.Equal(t, 1, session.CurrentIndex)
	assert.Equal(t, domain.PhasePreparing, c.Snapshot().Phase)
	assertInvariants(t, session)
}

func TestResumeWithoutAnchorRestartsPreparation(t *testing.T) {
	session := makeSession(domain.DifficultyHard)
	clock := newFakeClock()

	c, _ := newTestController(session, &stubScoring{}, clock)
	c.Resume()

	state := c.Snapshot()
	assert.Equal(t, domain.PhasePreparing, state.Phase)
	assert.Equal(t, domain.DifficultyHard.PreparationSec(), state.PreparationRemaining)
}

func TestResumeReactivatesPausedSession(t *testing.T) {
	session := makeSession(domain.DifficultyEasy)
	session.Status = domain.SessionStatusPaused
	clock := newFakeClock()

	c, repo := newTestController(session, &stubScoring{}, clock)
	c.Resume()

	assert.Equal(t, domain.SessionStatusInProgress, session.Status)
	assert.Equal(t, domain.SessionStatusInProgress, repo.lastUpdate().Status)
}

func TestPreparationCountdownLeadsToReady(t *testing.T) {
	session := makeSession(domain.DifficultyEasy)
	clock := newFakeClock()
	c, _ := newTestController(session, &stubScoring{}, clock)

	c.Resume()
	for i := 0; i < domain.DifficultyEasy.PreparationSec(); i++ {
		c.Tick()
	}

	state := c.Snapshot()
	assert.Equal(t, domain.PhaseReadyToAnswer, state.Phase)
	assert.Equal(t, 5, state.AutoStartRemaining)
	assert.Nil(t, session.QuestionStartTime, "anchor must stay unset during preparation")
}

func TestAutoStartCountdownBeginsAnswering(t *testing.T) {
	session := makeSession(domain.DifficultyEasy)
	scoring := &stubScoring{}
	clock := newFakeClock()
	c, repo := newTestController(session, scoring, clock)

	c.Resume()
	require.NoError(t, c.SkipPreparation())
	for i := 0; i < 5; i++ {
		c.Tick()
	}

	assert.Equal(t, domain.PhaseAnswering, c.Snapshot().Phase)
	require.NotNil(t, session.QuestionStartTime)
	assert.NotNil(t, repo.lastUpdate().QuestionStartTime, "anchor must be persisted at answer start")
}

func TestStartAnswerRequiresReadyPhase(t *testing.T) {
	session := makeSession(domain.DifficultyEasy)
	clock := newFakeClock()
	c, _ := newTestController(session, &stubScoring{}, clock)

	c.Resume()
	assert.ErrorIs(t, c.StartAnswer(), ErrNotReady)
	assert.ErrorIs(t, c.SubmitAnswer("early", ""), ErrNotAnswering)

	require.NoError(t, c.SkipPreparation())
	assert.ErrorIs(t, c.SkipPreparation(), ErrNotPreparing)
	require.NoError(t, c.StartAnswer())
	assert.ErrorIs(t, c.StartAnswer(), ErrNotReady)
}

func TestAutoSubmitFiresExactlyOnce(t *testing.T) {
	session := makeSession(domain.DifficultyEasy, domain.DifficultyEasy)
	scoring := &stubScoring{grade: oracle.Grade{Score: 1}}
	clock := newFakeClock()
	c, _ := newTestController(session, scoring, clock)

	c.Resume()
	require.NoError(t, c.SkipPreparation())
	require.NoError(t, c.StartAnswer())

	clock.Advance(time.Duration(domain.DifficultyEasy.TimeLimitSec()+1) * time.Second)
	c.Tick()
	c.Tick()

	require.Len(t, session.Answers, 1)
	assert.True(t, session.Answers[0].AutoSubmitted)
	assert.Equal(t, 1, scoring.gradeCalls)
	assert.Equal(t, 1, session.CurrentIndex)
}

func TestExplicitSubmitAfterExpiryStillSingle(t *testing.T) {
	session := makeSession(domain.DifficultyEasy, domain.DifficultyEasy)
	scoring := &stubScoring{grade: oracle.Grade{Score: 1}}
	clock := newFakeClock()
	c, _ := newTestController(session, scoring, clock)

	c.Resume()
	require.NoError(t, c.SkipPreparation())
	require.NoError(t, c.StartAnswer())

	clock.Advance(30 * time.Second)
	c.Tick()
	assert.ErrorIs(t, c.SubmitAnswer("too late", ""), ErrNotAnswering)
	assert.Len(t, session.Answers, 1)
}

func TestEmptyAnswerIsValidSubmission(t *testing.T) {
	session := makeSession(domain.DifficultyEasy)
	scoring := &stubScoring{
		grade:   oracle.Grade{Score: 0, Feedback: "Empty."},
		summary: oracle.Summary{FinalScore: 0, Summary: "No answers given."},
	}
	clock := newFakeClock()
	c, _ := newTestController(session, scoring, clock)

	c.Resume()
	require.NoError(t, c.SkipPreparation())
	require.NoError(t, c.StartAnswer())
	require.NoError(t, c.SubmitAnswer("", ""))

	assert.Equal(t, domain.SessionStatusCompleted, session.Status)
	require.Len(t, session.Answers, 1)
	assert.Empty(t, session.Answers[0].Text)
}

func TestExitDuringGradingDiscardsResult(t *testing.T) {
	session := makeSession(domain.DifficultyEasy, domain.DifficultyEasy)
	scoring := &blockingScoring{started: make(chan struct{})}
	clock := newFakeClock()
	c, _ := newTestController(session, scoring, clock)

	c.Resume()
	require.NoError(t, c.SkipPreparation())
	require.NoError(t, c.StartAnswer())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.SubmitAnswer("racing answer", "")
	}()

	<-scoring.started
	require.NoError(t, c.Exit())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not unwind after exit")
	}

	assert.Equal(t, domain.SessionStatusCompleted, session.Status)
	assert.Empty(t, session.Answers, "grade arriving after exit must be discarded")
	require.NotNil(t, session.FinalScore)
	assert.Equal(t, 0, *session.FinalScore)
	assert.Equal(t, ExitSummary, session.FinalSummary)
}

func TestRecordingIDAttachedToAnswer(t *testing.T) {
	session := makeSession(domain.DifficultyEasy)
	scoring := &stubScoring{
		grade:   oracle.Grade{Score: 6},
		summary: oracle.Summary{FinalScore: 60, Summary: "ok"},
	}
	clock := newFakeClock()
	c, _ := newTestController(session, scoring, clock)

	blobID := uuid.New().String()
	c.Resume()
	require.NoError(t, c.SkipPreparation())
	require.NoError(t, c.StartAnswer())
	require.NoError(t, c.SubmitAnswer("answer", blobID))

	require.Len(t, session.Answers, 1)
	assert.Equal(t, blobID, session.Answers[0].RecordingBlobID)
}

func TestEventsEmittedThroughLifecycle(t *testing.T) {
	session := makeSession(domain.DifficultyEasy)
	scoring := &stubScoring{
		grade:   oracle.Grade{Score: 9, Feedback: "Great."},
		summary: oracle.Summary{FinalScore: 90, Summary: "Excellent."},
	}
	clock := newFakeClock()
	c, _ := newTestController(session, scoring, clock)

	events, unsubscribe := c.Subscribe()
	defer unsubscribe()

	c.Resume()
	require.NoError(t, c.SkipPreparation())
	require.NoError(t, c.StartAnswer())
	require.NoError(t, c.SubmitAnswer("answer", ""))

	seen := map[EventType]bool{}
	for {
		select {
		case e := <-events:
			seen[e.Type] = true
		default:
			assert.True(t, seen[EventPhaseChanged])
			assert.True(t, seen[EventGradingStarted])
			assert.True(t, seen[EventGradingFinished])
			assert.True(t, seen[EventSessionCompleted])
			return
		}
	}
}

// failingOracle satisfies oracle.Oracle and fails every call, used to drive
// the retrier's fallback path end to end through the controller.
type failingOracle struct{}

func (failingOracle) GenerateQuestion(context.Context, domain.Difficulty, string) (*domain.Question, error) {
	return nil, errors.New("oracle unavailable")
}

func (failingOracle) GradeAnswer(context.Context, domain.Question, domain.Answer) (oracle.Grade, error) {
	return oracle.Grade{}, errors.New("oracle unavailable")
}

func (failingOracle) GenerateFinalSummary(context.Context, []domain.Answer, []domain.Question) (oracle.Summary, error) {
	return oracle.Summary{}, errors.New("oracle unavailable")
}
