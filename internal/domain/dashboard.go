package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CandidateRow is one line of the interviewer dashboard table.
type CandidateRow struct {
	Candidate  Candidate     `json:"candidate"`
	Status     SessionStatus `json:"status,omitempty"`
	FinalScore *int          `json:"final_score,omitempty"`
	Progress   string        `json:"progress,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type PaginatedCandidates struct {
	Candidates []CandidateRow `json:"candidates"`
	Pagination Pagination     `json:"pagination"`
}

type DashboardStats struct {
	TotalCandidates   int64   `json:"total_candidates"`
	CompletedSessions int64   `json:"completed_sessions"`
	ActiveSessions    int64   `json:"active_sessions"`
	AverageScore      float64 `json:"average_score"`
}

type SessionDetail struct {
	Session    *Session    `json:"session"`
	Candidate  *Candidate  `json:"candidate"`
	Recordings []Recording `json:"recordings,omitempty"`
}

type DashboardService interface {
	ListCandidates(ctx context.Context, search string, page, limit int) (*PaginatedCandidates, error)
	GetCandidateDetail(ctx context.Context, candidateID uuid.UUID) (*SessionDetail, error)
	GetSessionDetail(ctx context.Context, sessionID uuid.UUID) (*SessionDetail, error)
	GetRecording(ctx context.Context, blobID uuid.UUID) (*Recording, error)
	GetStats(ctx context.Context) (*DashboardStats, error)
	DeleteCandidate(ctx context.Context, candidateID uuid.UUID) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SetOracleKeyRequest struct {
	APIKey string `json:"api_key" validate:"required,min=10"`
}

// ReportService renders a downloadable report for a finished session.
type ReportService interface {
	SessionReport(ctx context.Context, sessionID uuid.UUID) ([]byte, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (string, error)
}
