package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/intervu-ai/intervu-server/internal/config"
	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/interview"
	"github.com/intervu-ai/intervu-server/internal/oracle"
	"github.com/intervu-ai/intervu-server/internal/timer"
	"github.com/intervu-ai/intervu-server/pkg/imagekit"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound   = errors.New("interview session not found")
	ErrRecordingNotFound = errors.New("recording not found")
	ErrStorageDisabled   = errors.New("recording storage is not configured")
	ErrRecordingTooLate  = errors.New("recordings can only be uploaded for a live session")
)

type interviewService struct {
	sessionRepo   domain.SessionRepository
	candidateRepo domain.CandidateRepository
	recordingRepo domain.RecordingRepository
	retrier       *oracle.Retrier
	hub           *interview.Hub
	storage       *imagekit.Client
	cacheRepo     domain.CacheRepository
	clock         timer.Clock
	cfg           config.InterviewConfig
	log           *zap.Logger
}

func NewInterviewService(
	sessionRepo domain.SessionRepository,
	candidateRepo domain.CandidateRepository,
	recordingRepo domain.RecordingRepository,
	retrier *oracle.Retrier,
	hub *interview.Hub,
	storage *imagekit.Client,
	cacheRepo domain.CacheRepository,
	clock timer.Clock,
	cfg config.InterviewConfig,
	log *zap.Logger,
) domain.InterviewService {
	return &interviewService{
		sessionRepo:   sessionRepo,
		candidateRepo: candidateRepo,
		recordingRepo: recordingRepo,
		retrier:       retrier,
		hub:           hub,
		storage:       storage,
		cacheRepo:     cacheRepo,
		clock:         clock,
		cfg:           cfg,
		log:           log,
	}
}

// Start creates a fresh session for the candidate and brings its controller
// live. A previous session for the same candidate is superseded: its
// controller is stopped and the row removed before the new one is created.
func (s *interviewService) Start(ctx context.Context, candidateID uuid.UUID) (*domain.SessionState, error) {
	candidate, err := s.candidateRepo.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}

	if err := s.supersedePreviousSession(ctx, candidate.ID); err != nil {
		return nil, err
	}

	questions := s.generateQuestionPlan(ctx, candidate.ResumeText)

	now := s.clock.Now()
	session := &domain.Session{
		ID:          uuid.New(),
		CandidateID: candidate.ID,
		Questions:   questions,
		Answers:     []domain.Answer{},
		Status:      domain.SessionStatusInProgress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	candidate.SessionID = &session.ID
	candidate.UpdatedAt = now
	if err := s.candidateRepo.Update(ctx, candidate); err != nil {
		return nil, err
	}

	controller, err := s.hub.GetOrAttach(session.ID, func() (*interview.Controller, error) {
		c := s.newController(session)
		c.Resume()
		c.Run()
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateDashboardCache(ctx)
	return controller.Snapshot(), nil
}

func (s *interviewService) GetState(ctx context.Context, sessionID uuid.UUID) (*domain.SessionState, error) {
	controller, err := s.attach(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return controller.Snapshot(), nil
}

func (s *interviewService) StartAnswer(ctx context.Context, sessionID uuid.UUID) (*domain.SessionState, error) {
	controller, err := s.attach(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := controller.StartAnswer(); err != nil {
		return nil, err
	}
	return controller.Snapshot(), nil
}

func (s *interviewService) SkipPreparation(ctx context.Context, sessionID uuid.UUID) (*domain.SessionState, error) {
	controller, err := s.attach(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := controller.SkipPreparation(); err != nil {
		return nil, err
	}
	return controller.Snapshot(), nil
}

func (s *interviewService) SubmitAnswer(ctx context.Context, sessionID uuid.UUID, req *domain.SubmitAnswerRequest) (*domain.SessionState, error) {
	controller, err := s.attach(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := controller.SubmitAnswer(req.Text, req.RecordingBlobID); err != nil {
		return nil, err
	}
	return controller.Snapshot(), nil
}

func (s *interviewService) Exit(ctx context.Context, sessionID uuid.UUID) (*domain.SessionState, error) {
	controller, err := s.attach(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := controller.Exit(); err != nil {
		return nil, err
	}
	s.invalidateDashboardCache(ctx)
	return controller.Snapshot(), nil
}

// UploadRecording stores the answer recording blob and its metadata row. The
// returned BlobID is what the client links into its submit request; losing
// the upload never blocks the answer itself.
func (s *interviewService) UploadRecording(ctx context.Context, sessionID uuid.UUID, file *multipart.FileHeader) (*domain.Recording, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Status != domain.SessionStatusInProgress {
		return nil, ErrRecordingTooLate
	}

	folder := fmt.Sprintf("/recordings/%s", session.ID)
	uploaded, err := s.storage.UploadFile(ctx, file, folder)
	if err != nil {
		return nil, err
	}

	recording := &domain.Recording{
		BlobID:    uuid.New(),
		SessionID: session.ID,
		FileID:    uploaded.FileID,
		URL:       uploaded.URL,
		SizeBytes: uploaded.Size,
		CreatedAt: s.clock.Now(),
	}

	if err := s.recordingRepo.Create(ctx, recording); err != nil {
		return nil, err
	}

	return recording, nil
}

// attach returns the live controller for the session, reconstructing one
// from the persisted row after a reload or server restart.
func (s *interviewService) attach(ctx context.Context, sessionID uuid.UUID) (*interview.Controller, error) {
	return s.hub.GetOrAttach(sessionID, func() (*interview.Controller, error) {
		session, err := s.sessionRepo.FindByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrSessionNotFound
			}
			return nil, err
		}

		c := s.newController(session)
		c.Resume()
		c.Run()
		return c, nil
	})
}

func (s *interviewService) newController(session *domain.Session) *interview.Controller {
	return interview.NewController(
		session,
		s.sessionRepo,
		s.retrier,
		s.clock,
		interview.Config{AutoStartSec: s.cfg.AutoStartSec},
		s.log,
	)
}

// generateQuestionPlan builds the fixed question sequence for a new session.
// Generation is total: each slot falls back to a canned question when the
// oracle stays unavailable, and the cache keeps the set free of duplicates.
func (s *interviewService) generateQuestionPlan(ctx context.Context, resumeText string) []domain.Question {
	cache := oracle.NewQuestionCache()
	questions := make([]domain.Question, 0, len(s.cfg.QuestionPlan))
	for _, difficulty := range s.cfg.QuestionPlan {
		q := s.retrier.GenerateQuestion(ctx, difficulty, resumeText, cache)
		questions = append(questions, *q)
	}
	return questions
}

func (s *interviewService) supersedePreviousSession(ctx context.Context, candidateID uuid.UUID) error {
	previous, err := s.sessionRepo.FindByCandidateID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	if controller, ok := s.hub.Get(previous.ID); ok {
		controller.Close()
	}

	// Recordings of the superseded session would become unreachable once the
	// row is gone, so their blobs and metadata go first.
	recordings, err := s.recordingRepo.FindBySessionID(ctx, previous.ID)
	if err != nil {
		return err
	}
	for _, recording := range recordings {
		if s.storage != nil {
			if err := s.storage.DeleteFile(ctx, recording.FileID); err != nil {
				return err
			}
		}
		if err := s.recordingRepo.Delete(ctx, recording.BlobID); err != nil {
			return err
		}
	}

	s.log.Info("superseding previous session",
		zap.String("candidate_id", candidateID.String()),
		zap.String("session_id", previous.ID.String()),
	)
	return s.sessionRepo.Delete(ctx, previous.ID)
}

func (s *interviewService) invalidateDashboardCache(ctx context.Context) {
	if s.cacheRepo == nil {
		return
	}
	_ = s.cacheRepo.DeleteByPattern(ctx, "dashboard:*")
}
