// Package interview owns the per-question phase state machine of a live
// session: preparation countdown, explicit answer start, answer countdown
// anchored on a persisted timestamp, grading, and advance-or-complete. One
// Controller runs per active session; all transitions are serialized on its
// mutex, and the session row is mutated only from transition handlers.
package interview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/metrics"
	"github.com/intervu-ai/intervu-server/internal/oracle"
	"github.com/intervu-ai/intervu-server/internal/timer"
	"go.uber.org/zap"
)

var (
	ErrNotPreparing    = errors.New("skip preparation is only valid while preparing")
	ErrNotReady        = errors.New("start answer is only valid in the ready_to_answer phase")
	ErrNotAnswering    = errors.New("submit is only valid while answering")
	ErrSessionFinished = errors.New("session is already completed")
)

// ExitSummary is recorded when the candidate aborts the interview early.
const ExitSummary = "Interview exited by candidate. Incomplete submission."

const persistTimeout = 5 * time.Second

// ScoringOracle is the total (never-failing) grading contract the controller
// depends on. *oracle.Retrier satisfies it.
type ScoringOracle interface {
	GradeAnswer(ctx context.Context, question domain.Question, answer domain.Answer) oracle.Grade
	GenerateFinalSummary(ctx context.Context, answers []domain.Answer, questions []domain.Question) oracle.Summary
}

type Config struct {
	// AutoStartSec is the ready_to_answer countdown after which answering
	// begins without an explicit command. Zero disables auto-start.
	AutoStartSec int
}

type Controller struct {
	cfg      Config
	log      *zap.Logger
	clock    timer.Clock
	oracle   ScoringOracle
	sessions domain.SessionRepository

	mu                 sync.Mutex
	session            *domain.Session
	phase              domain.Phase
	prepRemaining      int
	autoStartRemaining int
	submitting         bool
	exited             bool

	ctx     context.Context
	cancel  context.CancelFunc
	runOnce sync.Once

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

func NewController(
	session *domain.Session,
	sessions domain.SessionRepository,
	scoring ScoringOracle,
	clock timer.Clock,
	cfg Config,
	log *zap.Logger,
) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:      cfg,
		log:      log.With(zap.String("session_id", session.ID.String())),
		clock:    clock,
		oracle:   scoring,
		sessions: sessions,
		session:  session,
		phase:    domain.PhaseIdle,
		ctx:      ctx,
		cancel:   cancel,
		subs:     make(map[int]chan Event),
	}
}

// Resume reconstructs the phase from session data alone. A persisted answer
// anchor means the candidate was mid-answer: re-enter answering with the
// remaining time recomputed from the anchor, or run the auto-submit path
// immediately if the deadline already passed. Without an anchor the question
// restarts at preparation; preparation progress is never persisted.
func (c *Controller) Resume() {
	c.mu.Lock()

	if c.session.Status == domain.SessionStatusCompleted {
		c.phase = domain.PhaseCompleted
		c.mu.Unlock()
		return
	}

	if c.session.Status == domain.SessionStatusPaused {
		c.session.Status = domain.SessionStatusInProgress
		c.session.UpdatedAt = c.clock.Now()
		c.persistLocked()
	}

	if anchor := c.session.QuestionStartTime; anchor != nil {
		q, ok := c.session.CurrentQuestion()
		if !ok {
			// Anchor with no current question means corrupted state;
			// fall back to preparation of nothing is impossible, so
			// close out the session instead of guessing.
			c.log.Error("resume found answer anchor without a current question")
			c.completeLocked(0, ExitSummary, "corrupt")
			c.mu.Unlock()
			return
		}

		c.phase = domain.PhaseAnswering
		c.emitPhaseLocked()

		remaining := timer.Remaining(*anchor, q.TimeLimitSec, c.clock.Now())
		c.mu.Unlock()
		if remaining <= 0 {
			c.submit("", "", true)
		}
		return
	}

	c.enterPreparationLocked()
	c.mu.Unlock()
}

// Run starts the one-second tick loop. The loop is the controller's single
// owned timer resource; it stops when the session completes or the
// controller is closed.
func (c *Controller) Run() {
	c.runOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-c.ctx.Done():
					return
				case <-ticker.C:
					c.Tick()
				}
			}
		}()
	})
}

// Tick advances whichever countdown is active. Exactly one countdown exists
// per phase, so a single tick source can never double-fire auto-submits.
func (c *Controller) Tick() {
	c.mu.Lock()

	switch c.phase {
	case domain.PhasePreparing:
		c.prepRemaining--
		if c.prepRemaining <= 0 {
			c.prepRemaining = 0
			c.phase = domain.PhaseReadyToAnswer
			c.autoStartRemaining = c.cfg.AutoStartSec
			c.emitPhaseLocked()
			if c.cfg.AutoStartSec <= 0 {
				// Auto-start disabled; wait for the explicit command.
				c.mu.Unlock()
				return
			}
		} else {
			c.emitTickLocked(c.prepRemaining)
		}
		c.mu.Unlock()

	case domain.PhaseReadyToAnswer:
		if c.cfg.AutoStartSec <= 0 {
			c.mu.Unlock()
			return
		}
		c.autoStartRemaining--
		if c.autoStartRemaining <= 0 {
			c.startAnswerLocked()
		} else {
			c.emitTickLocked(c.autoStartRemaining)
		}
		c.mu.Unlock()

	case domain.PhaseAnswering:
		q, ok := c.session.CurrentQuestion()
		if !ok || c.session.QuestionStartTime == nil {
			c.mu.Unlock()
			return
		}
		remaining := timer.Remaining(*c.session.QuestionStartTime, q.TimeLimitSec, c.clock.Now())
		if remaining <= 0 {
			c.mu.Unlock()
			c.submit("", "", true)
			return
		}
		c.emitTickLocked(remaining)
		c.mu.Unlock()

	default:
		c.mu.Unlock()
	}
}

// SkipPreparation ends the preparation countdown early.
func (c *Controller) SkipPreparation() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != domain.PhasePreparing {
		return ErrNotPreparing
	}

	c.prepRemaining = 0
	c.phase = domain.PhaseReadyToAnswer
	c.autoStartRemaining = c.cfg.AutoStartSec
	c.emitPhaseLocked()
	return nil
}

// StartAnswer begins the answer phase. This is the only place the answer
// deadline anchor is written to the session, which is what makes the
// countdown resumable across reloads.
func (c *Controller) StartAnswer() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != domain.PhaseReadyToAnswer {
		return ErrNotReady
	}

	c.startAnswerLocked()
	return nil
}

// SubmitAnswer submits the candidate's answer text for the current question.
// Empty text is a valid submission.
func (c *Controller) SubmitAnswer(text, recordingBlobID string) error {
	return c.submit(text, recordingBlobID, false)
}

// Exit aborts the interview from any live phase. The session completes with
// a zero score and an exit summary; any in-flight grading or summary call is
// cancelled and its result discarded.
func (c *Controller) Exit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == domain.PhaseCompleted {
		return ErrSessionFinished
	}

	c.exited = true
	c.cancel()
	c.completeLocked(0, ExitSummary, "exited")
	return nil
}

// Close stops the tick loop without completing the session, leaving it
// resumable. Used on server shutdown.
func (c *Controller) Close() {
	c.cancel()
}

// Done closes when the controller has stopped ticking (session completed,
// exited, or closed).
func (c *Controller) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Controller) SessionID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ID
}

// Snapshot renders the controller's current state for the presentation
// layer.
func (c *Controller) Snapshot() *domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := &domain.SessionState{
		SessionID:             c.session.ID,
		CandidateID:           c.session.CandidateID,
		Status:                c.session.Status,
		Phase:                 c.phase,
		CurrentIndex:          c.session.CurrentIndex,
		TotalQuestions:        len(c.session.Questions),
		PreparationRemaining:  c.prepRemaining,
		AutoStartRemaining:    c.autoStartRemaining,
		FinalScore:            c.session.FinalScore,
		FinalSummary:          c.session.FinalSummary,
		AnsweredQuestionCount: len(c.session.Answers),
	}

	if q, ok := c.session.CurrentQuestion(); ok && c.phase != domain.PhaseCompleted {
		question := q
		state.Question = &question
		if c.phase == domain.PhaseAnswering && c.session.QuestionStartTime != nil {
			state.AnswerRemaining = timer.Remaining(*c.session.QuestionStartTime, q.TimeLimitSec, c.clock.Now())
		}
	}

	return state
}

// Subscribe registers an event listener. The returned func unsubscribes.
// Delivery is best-effort: slow consumers drop events rather than stall
// transitions.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Event, subscriberBuffer)
	c.subs[id] = ch

	return ch, func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
}

// submit is the single convergence point of the explicit submit command and
// timer-expiry auto-submission. The sequence submit -> grade -> append ->
// advance-or-complete runs strictly in order; the next preparation phase
// cannot begin until the answer is appended.
func (c *Controller) submit(text, recordingBlobID string, auto bool) error {
	c.mu.Lock()

	if c.phase != domain.PhaseAnswering || c.submitting {
		c.mu.Unlock()
		if auto {
			// Duplicate expiry observation; the first one won.
			return nil
		}
		return ErrNotAnswering
	}

	q, ok := c.session.CurrentQuestion()
	if !ok || c.session.QuestionStartTime == nil {
		c.mu.Unlock()
		return ErrNotAnswering
	}

	c.submitting = true
	anchor := *c.session.QuestionStartTime
	now := c.clock.Now()
	remaining := timer.Remaining(anchor, q.TimeLimitSec, now)

	answer := domain.Answer{
		ID:              uuid.New(),
		QuestionID:      q.ID,
		Text:            text,
		StartTime:       anchor,
		SubmitTime:      now,
		DurationSec:     q.TimeLimitSec - remaining,
		AutoSubmitted:   auto,
		RecordingBlobID: recordingBlobID,
	}
	if auto {
		metrics.AutoSubmits.Inc()
	}

	c.phase = domain.PhaseGrading
	c.emitLocked(Event{Type: EventGradingStarted})
	c.emitPhaseLocked()

	ctx := c.ctx
	c.mu.Unlock()

	// Grading runs off the lock so Exit stays responsive; the retrier is
	// total and the session context cancels it early on exit.
	grade := c.oracle.GradeAnswer(ctx, q, answer)

	c.mu.Lock()
	if c.exited {
		// Exit won the race; the grade is discarded.
		c.mu.Unlock()
		return nil
	}

	score := grade.Score
	answer.LlmScore = &score
	answer.LlmFeedback = grade.Feedback
	c.session.Answers = append(c.session.Answers, answer)
	c.emitLocked(Event{Type: EventGradingFinished, Score: &score, Feedback: grade.Feedback})

	if !c.session.OnLastQuestion() {
		c.session.CurrentIndex++
		c.session.QuestionStartTime = nil
		c.session.UpdatedAt = c.clock.Now()
		c.submitting = false
		// Append and advance land in one write so a reload can never
		// observe answers out of step with the index.
		c.persistLocked()
		c.enterPreparationLocked()
		c.mu.Unlock()
		return nil
	}

	c.phase = domain.PhaseCompleting
	c.emitPhaseLocked()
	answers := append([]domain.Answer(nil), c.session.Answers...)
	questions := c.session.Questions
	c.mu.Unlock()

	summary := c.oracle.GenerateFinalSummary(ctx, answers, questions)

	c.mu.Lock()
	if c.exited {
		c.mu.Unlock()
		return nil
	}
	c.completeLocked(summary.FinalScore, summary.Summary, "finished")
	c.mu.Unlock()
	return nil
}

func (c *Controller) startAnswerLocked() {
	q, ok := c.session.CurrentQuestion()
	if !ok {
		return
	}

	now := c.clock.Now()
	c.session.QuestionStartTime = &now
	c.session.UpdatedAt = now
	c.persistLocked()

	c.phase = domain.PhaseAnswering
	c.autoStartRemaining = 0
	c.emitPhaseLocked()
	c.emitTickLocked(q.TimeLimitSec)
}

func (c *Controller) enterPreparationLocked() {
	q, ok := c.session.CurrentQuestion()
	if !ok {
		return
	}

	c.phase = domain.PhasePreparing
	c.prepRemaining = q.Difficulty.PreparationSec()
	c.autoStartRemaining = 0
	c.emitPhaseLocked()
}

func (c *Controller) completeLocked(finalScore int, finalSummary, reason string) {
	now := c.clock.Now()
	c.session.Status = domain.SessionStatusCompleted
	c.session.FinalScore = &finalScore
	c.session.FinalSummary = finalSummary
	c.session.QuestionStartTime = nil
	c.session.UpdatedAt = now
	c.submitting = false
	c.persistLocked()

	c.phase = domain.PhaseCompleted
	metrics.SessionsCompleted.WithLabelValues(reason).Inc()
	c.emitLocked(Event{Type: EventSessionCompleted, FinalScore: &finalScore})
	c.emitPhaseLocked()
	c.cancel()
}

// persistLocked writes the session through to durable storage. Persistence
// uses a detached context: completing or exiting a session must flush even
// when the session context is already cancelled.
func (c *Controller) persistLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := c.sessions.Update(ctx, c.session); err != nil {
		c.log.Error("failed to persist session", zap.Error(err))
	}
}

func (c *Controller) emitPhaseLocked() {
	c.emitLocked(Event{Type: EventPhaseChanged})
}

func (c *Controller) emitTickLocked(remaining int) {
	c.emitLocked(Event{Type: EventTick, RemainingSec: remaining})
}

func (c *Controller) emitLocked(e Event) {
	e.SessionID = c.session.ID
	e.Phase = c.phase
	e.QuestionIndex = c.session.CurrentIndex

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
