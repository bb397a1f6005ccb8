package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/interview"

	"github.com/google/uuid"
)

const (
	dashboardCacheTTL      = 30 * time.Second
	dashboardStatsKey      = "dashboard:stats"
	dashboardCandidatesKey = "dashboard:candidates:%s:%d:%d"
)

type dashboardService struct {
	candidateRepo    domain.CandidateRepository
	sessionRepo      domain.SessionRepository
	recordingRepo    domain.RecordingRepository
	candidateService domain.CandidateService
	cacheRepo        domain.CacheRepository
	hub              *interview.Hub
}

func NewDashboardService(
	candidateRepo domain.CandidateRepository,
	sessionRepo domain.SessionRepository,
	recordingRepo domain.RecordingRepository,
	candidateService domain.CandidateService,
	cacheRepo domain.CacheRepository,
	hub *interview.Hub,
) domain.DashboardService {
	return &dashboardService{
		candidateRepo:    candidateRepo,
		sessionRepo:      sessionRepo,
		recordingRepo:    recordingRepo,
		candidateService: candidateService,
		cacheRepo:        cacheRepo,
		hub:              hub,
	}
}

func (s *dashboardService) ListCandidates(ctx context.Context, search string, page, limit int) (*domain.PaginatedCandidates, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	cacheKey := fmt.Sprintf(dashboardCandidatesKey, search, page, limit)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		var result domain.PaginatedCandidates
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	}

	offset := (page - 1) * limit
	candidates, err := s.candidateRepo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.candidateRepo.Count(ctx, search)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.CandidateRow, 0, len(candidates))
	for i := range candidates {
		row, err := s.buildRow(ctx, &candidates[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	result := &domain.PaginatedCandidates{
		Candidates: rows,
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}

	s.toCache(ctx, cacheKey, result)
	return result, nil
}

// GetCandidateDetail returns the candidate together with their session (when
// one exists) and its recordings.
func (s *dashboardService) GetCandidateDetail(ctx context.Context, candidateID uuid.UUID) (*domain.SessionDetail, error) {
	candidate, err := s.candidateRepo.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}

	session, err := s.sessionRepo.FindByCandidateID(ctx, candidate.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.SessionDetail{Candidate: candidate}, nil
		}
		return nil, err
	}

	recordings, err := s.recordingRepo.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	return &domain.SessionDetail{
		Session:    session,
		Candidate:  candidate,
		Recordings: recordings,
	}, nil
}

func (s *dashboardService) GetRecording(ctx context.Context, blobID uuid.UUID) (*domain.Recording, error) {
	recording, err := s.recordingRepo.FindByBlobID(ctx, blobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordingNotFound
		}
		return nil, err
	}
	return recording, nil
}

func (s *dashboardService) GetSessionDetail(ctx context.Context, sessionID uuid.UUID) (*domain.SessionDetail, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	candidate, err := s.candidateRepo.FindByID(ctx, session.CandidateID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	recordings, err := s.recordingRepo.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	return &domain.SessionDetail{
		Session:    session,
		Candidate:  candidate,
		Recordings: recordings,
	}, nil
}

func (s *dashboardService) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	if cached, ok := s.fromCache(ctx, dashboardStatsKey); ok {
		var stats domain.DashboardStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	totalCandidates, err := s.candidateRepo.Count(ctx, "")
	if err != nil {
		return nil, err
	}

	completed, err := s.sessionRepo.CountByStatus(ctx, domain.SessionStatusCompleted)
	if err != nil {
		return nil, err
	}

	averageScore, err := s.sessionRepo.AverageFinalScore(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		TotalCandidates:   totalCandidates,
		CompletedSessions: completed,
		ActiveSessions:    int64(len(s.hub.ActiveIDs())),
		AverageScore:      averageScore,
	}

	s.toCache(ctx, dashboardStatsKey, stats)
	return stats, nil
}

func (s *dashboardService) DeleteCandidate(ctx context.Context, candidateID uuid.UUID) error {
	return s.candidateService.Delete(ctx, candidateID)
}

func (s *dashboardService) buildRow(ctx context.Context, candidate *domain.Candidate) (*domain.CandidateRow, error) {
	row := &domain.CandidateRow{
		Candidate: *candidate,
		UpdatedAt: candidate.UpdatedAt,
	}

	session, err := s.sessionRepo.FindByCandidateID(ctx, candidate.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return row, nil
		}
		return nil, err
	}

	row.Status = session.Status
	row.FinalScore = session.FinalScore
	row.Progress = fmt.Sprintf("%d/%d", len(session.Answers), len(session.Questions))
	row.UpdatedAt = session.UpdatedAt
	return row, nil
}

func (s *dashboardService) fromCache(ctx context.Context, key string) (string, bool) {
	if s.cacheRepo == nil {
		return "", false
	}
	cached, err := s.cacheRepo.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return cached, true
}

func (s *dashboardService) toCache(ctx context.Context, key string, value interface{}) {
	if s.cacheRepo == nil {
		return
	}
	_ = s.cacheRepo.Set(ctx, key, value, dashboardCacheTTL)
}
