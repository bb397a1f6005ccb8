package domain

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
)

// Candidate is the identity extracted from an uploaded resume. Name, email
// and phone are best-effort and may stay empty until supplied manually; an
// interview can start with a partially populated candidate.
type Candidate struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name,omitempty"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	ResumeFileName string     `json:"resume_file_name,omitempty"`
	ResumeText     string     `json:"-"`
	SessionID      *uuid.UUID `json:"session_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// MissingFields lists contact fields that resume extraction could not fill.
func (c *Candidate) MissingFields() []string {
	missing := make([]string, 0, 3)
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.Email == "" {
		missing = append(missing, "email")
	}
	if c.Phone == "" {
		missing = append(missing, "phone")
	}
	return missing
}

type UpdateCandidateRequest struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,numeric,len=10"`
}

type CandidateResponse struct {
	Candidate     *Candidate `json:"candidate"`
	MissingFields []string   `json:"missing_fields"`
}

type CandidateRepository interface {
	Create(ctx context.Context, candidate *Candidate) error
	FindByID(ctx context.Context, id uuid.UUID) (*Candidate, error)
	Update(ctx context.Context, candidate *Candidate) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, limit, offset int) ([]Candidate, error)
	Count(ctx context.Context, search string) (int64, error)
}

type CandidateService interface {
	IngestResume(ctx context.Context, file *multipart.FileHeader) (*CandidateResponse, error)
	UpdateFields(ctx context.Context, id uuid.UUID, req *UpdateCandidateRequest) (*CandidateResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Candidate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
