package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/intervu-ai/intervu-server/internal/domain"

	"github.com/google/uuid"
)

const (
	sessionColumns = `id, candidate_id, questions, current_index, answers, status, question_start_time, final_score, final_summary, created_at, updated_at`
)

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	questionsJSON, err := json.Marshal(session.Questions)
	if err != nil {
		return err
	}
	answersJSON, err := json.Marshal(session.Answers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (id, candidate_id, questions, current_index, answers, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		session.ID,
		session.CandidateID,
		questionsJSON,
		session.CurrentIndex,
		answersJSON,
		session.Status,
		session.CreatedAt,
		session.UpdatedAt,
	)
	return err
}

func (r *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = $1
	`
	return r.scanSession(r.db.QueryRowContext(ctx, query, id))
}

func (r *sessionRepository) FindByCandidateID(ctx context.Context, candidateID uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE candidate_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanSession(r.db.QueryRowContext(ctx, query, candidateID))
}

// Update writes the answers list and the current index in a single statement
// so no reader can observe one without the other.
func (r *sessionRepository) Update(ctx context.Context, session *domain.Session) error {
	answersJSON, err := json.Marshal(session.Answers)
	if err != nil {
		return err
	}

	query := `
		UPDATE sessions
		SET current_index = $1, answers = $2, status = $3, question_start_time = $4,
		    final_score = $5, final_summary = $6, updated_at = $7
		WHERE id = $8
	`
	_, err = r.db.ExecContext(ctx, query,
		session.CurrentIndex,
		answersJSON,
		session.Status,
		session.QuestionStartTime,
		session.FinalScore,
		session.FinalSummary,
		session.UpdatedAt,
		session.ID,
	)
	return err
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sessions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *sessionRepository) FindInProgressUpdatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE status = $1 AND updated_at < $2
	`
	rows, err := r.db.QueryContext(ctx, query, domain.SessionStatusInProgress, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]domain.Session, 0)
	for rows.Next() {
		session, err := r.scanSessionFromRows(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) CountByStatus(ctx context.Context, status domain.SessionStatus) (int64, error) {
	query := `SELECT COUNT(id) FROM sessions WHERE status = $1`
	var count int64
	err := r.db.QueryRowContext(ctx, query, status).Scan(&count)
	return count, err
}

func (r *sessionRepository) AverageFinalScore(ctx context.Context) (float64, error) {
	query := `SELECT COALESCE(AVG(final_score), 0) FROM sessions WHERE status = $1 AND final_score IS NOT NULL`
	var avg float64
	err := r.db.QueryRowContext(ctx, query, domain.SessionStatusCompleted).Scan(&avg)
	return avg, err
}

func (r *sessionRepository) scanSession(row *sql.Row) (*domain.Session, error) {
	var session domain.Session
	var questionsJSON, answersJSON []byte
	var status string
	err := row.Scan(
		&session.ID,
		&session.CandidateID,
		&questionsJSON,
		&session.CurrentIndex,
		&answersJSON,
		&status,
		&session.QuestionStartTime,
		&session.FinalScore,
		&session.FinalSummary,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	session.Status = domain.SessionStatus(status)

	if err := json.Unmarshal(questionsJSON, &session.Questions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answersJSON, &session.Answers); err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *sessionRepository) scanSessionFromRows(rows *sql.Rows) (*domain.Session, error) {
	var session domain.Session
	var questionsJSON, answersJSON []byte
	var status string
	err := rows.Scan(
		&session.ID,
		&session.CandidateID,
		&questionsJSON,
		&session.CurrentIndex,
		&answersJSON,
		&status,
		&session.QuestionStartTime,
		&session.FinalScore,
		&session.FinalSummary,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	session.Status = domain.SessionStatus(status)

	if err := json.Unmarshal(questionsJSON, &session.Questions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answersJSON, &session.Answers); err != nil {
		return nil, err
	}

	return &session, nil
}
