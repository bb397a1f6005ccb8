package repository

import (
	"context"
	"database/sql"

	"github.com/intervu-ai/intervu-server/internal/domain"

	"github.com/google/uuid"
)

const (
	candidateColumns = `id, name, email, phone, resume_file_name, resume_text, session_id, created_at, updated_at`
)

type candidateRepository struct {
	db *sql.DB
}

func NewCandidateRepository(db *sql.DB) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *domain.Candidate) error {
	query := `
		INSERT INTO candidates (id, name, email, phone, resume_file_name, resume_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		candidate.ID,
		candidate.Name,
		candidate.Email,
		candidate.Phone,
		candidate.ResumeFileName,
		candidate.ResumeText,
		candidate.CreatedAt,
		candidate.UpdatedAt,
	)
	return err
}

func (r *candidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates
		WHERE id = $1
	`
	return r.scanCandidate(r.db.QueryRowContext(ctx, query, id))
}

func (r *candidateRepository) Update(ctx context.Context, candidate *domain.Candidate) error {
	query := `
		UPDATE candidates
		SET name = $1, email = $2, phone = $3, session_id = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		candidate.Name,
		candidate.Email,
		candidate.Phone,
		candidate.SessionID,
		candidate.UpdatedAt,
		candidate.ID,
	)
	return err
}

func (r *candidateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM candidates WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *candidateRepository) List(ctx context.Context, search string, limit, offset int) ([]domain.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]domain.Candidate, 0)
	for rows.Next() {
		candidate, err := r.scanCandidateFromRows(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *candidate)
	}
	return candidates, rows.Err()
}

func (r *candidateRepository) Count(ctx context.Context, search string) (int64, error) {
	query := `
		SELECT COUNT(id)
		FROM candidates
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
	`
	var count int64
	err := r.db.QueryRowContext(ctx, query, search).Scan(&count)
	return count, err
}

func (r *candidateRepository) scanCandidate(row *sql.Row) (*domain.Candidate, error) {
	var candidate domain.Candidate
	err := row.Scan(
		&candidate.ID,
		&candidate.Name,
		&candidate.Email,
		&candidate.Phone,
		&candidate.ResumeFileName,
		&candidate.ResumeText,
		&candidate.SessionID,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) scanCandidateFromRows(rows *sql.Rows) (*domain.Candidate, error) {
	var candidate domain.Candidate
	err := rows.Scan(
		&candidate.ID,
		&candidate.Name,
		&candidate.Email,
		&candidate.Phone,
		&candidate.ResumeFileName,
		&candidate.ResumeText,
		&candidate.SessionID,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}
