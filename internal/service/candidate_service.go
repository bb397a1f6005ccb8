package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/pkg/genai"
	"github.com/intervu-ai/intervu-server/pkg/imagekit"
	"github.com/intervu-ai/intervu-server/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrResumeUnreadable  = errors.New("resume could not be read, please upload a file with selectable text")
)

// minResumeTextChars is the threshold below which an extraction is treated
// as a scanned or empty document.
const minResumeTextChars = 20

const extractResumePrompt = `You are a resume parser. Read the attached resume document and extract its content.

Respond ONLY with valid JSON in this exact format:
{
  "text": "the full plain text content of the resume",
  "name": "candidate full name or empty string if not found",
  "email": "candidate email or empty string if not found",
  "phone": "candidate phone number digits only or empty string if not found"
}

Extract now:`

type resumeExtraction struct {
	Text  string `json:"text"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type candidateService struct {
	candidateRepo domain.CandidateRepository
	sessionRepo   domain.SessionRepository
	recordingRepo domain.RecordingRepository
	genaiClient   *genai.Client
	storage       *imagekit.Client
	cacheRepo     domain.CacheRepository
	fileValidator *validator.FileValidator
}

func NewCandidateService(
	candidateRepo domain.CandidateRepository,
	sessionRepo domain.SessionRepository,
	recordingRepo domain.RecordingRepository,
	genaiClient *genai.Client,
	storage *imagekit.Client,
	cacheRepo domain.CacheRepository,
) domain.CandidateService {
	return &candidateService{
		candidateRepo: candidateRepo,
		sessionRepo:   sessionRepo,
		recordingRepo: recordingRepo,
		genaiClient:   genaiClient,
		storage:       storage,
		cacheRepo:     cacheRepo,
		fileValidator: validator.ResumeValidator(),
	}
}

// IngestResume parses the uploaded resume, extracts the candidate's contact
// fields best-effort, and creates the candidate. Fields the extraction could
// not fill are reported back so the client can prompt for them.
func (s *candidateService) IngestResume(ctx context.Context, file *multipart.FileHeader) (*domain.CandidateResponse, error) {
	if err := s.fileValidator.Validate(file); err != nil {
		return nil, err
	}

	extraction, err := s.extractResume(ctx, file)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	candidate := &domain.Candidate{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(extraction.Name),
		Email:          strings.TrimSpace(extraction.Email),
		Phone:          strings.TrimSpace(extraction.Phone),
		ResumeFileName: file.Filename,
		ResumeText:     extraction.Text,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		return nil, err
	}

	s.invalidateDashboardCache(ctx)

	return &domain.CandidateResponse{
		Candidate:     candidate,
		MissingFields: candidate.MissingFields(),
	}, nil
}

func (s *candidateService) UpdateFields(ctx context.Context, id uuid.UUID, req *domain.UpdateCandidateRequest) (*domain.CandidateResponse, error) {
	candidate, err := s.candidateRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}

	if req.Name != "" {
		candidate.Name = req.Name
	}
	if req.Email != "" {
		candidate.Email = req.Email
	}
	if req.Phone != "" {
		candidate.Phone = req.Phone
	}
	candidate.UpdatedAt = time.Now()

	if err := s.candidateRepo.Update(ctx, candidate); err != nil {
		return nil, err
	}

	s.invalidateDashboardCache(ctx)

	return &domain.CandidateResponse{
		Candidate:     candidate,
		MissingFields: candidate.MissingFields(),
	}, nil
}

func (s *candidateService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	candidate, err := s.candidateRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}
	return candidate, nil
}

// Delete removes the candidate together with their session and any uploaded
// recordings, external blobs included.
func (s *candidateService) Delete(ctx context.Context, id uuid.UUID) error {
	candidate, err := s.candidateRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCandidateNotFound
		}
		return err
	}

	session, err := s.sessionRepo.FindByCandidateID(ctx, candidate.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if session != nil {
		recordings, err := s.recordingRepo.FindBySessionID(ctx, session.ID)
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
		if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
			return err
		}
	}

	if err := s.candidateRepo.Delete(ctx, candidate.ID); err != nil {
		return err
	}

	s.invalidateDashboardCache(ctx)
	return nil
}

func (s *candidateService) extractResume(ctx context.Context, file *multipart.FileHeader) (*resumeExtraction, error) {
	if s.genaiClient == nil {
		return nil, ErrResumeUnreadable
	}

	raw, err := s.genaiClient.GenerateJSONFromFile(ctx, file, extractResumePrompt)
	if err != nil {
		return nil, ErrResumeUnreadable
	}

	var extraction resumeExtraction
	if err := json.Unmarshal([]byte(raw), &extraction); err != nil {
		return nil, ErrResumeUnreadable
	}

	if len(strings.TrimSpace(extraction.Text)) < minResumeTextChars {
		return nil, ErrResumeUnreadable
	}

	return &extraction, nil
}

func (s *candidateService) invalidateDashboardCache(ctx context.Context) {
	if s.cacheRepo == nil {
		return
	}
	_ = s.cacheRepo.DeleteByPattern(ctx, "dashboard:*")
}
