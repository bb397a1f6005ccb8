package repository

import (
	"context"
	"database/sql"

	"github.com/intervu-ai/intervu-server/internal/domain"

	"github.com/google/uuid"
)

const (
	recordingColumns = `blob_id, session_id, file_id, url, size_bytes, created_at`
)

type recordingRepository struct {
	db *sql.DB
}

func NewRecordingRepository(db *sql.DB) domain.RecordingRepository {
	return &recordingRepository{db: db}
}

func (r *recordingRepository) Create(ctx context.Context, recording *domain.Recording) error {
	query := `
		INSERT INTO recordings (blob_id, session_id, file_id, url, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		recording.BlobID,
		recording.SessionID,
		recording.FileID,
		recording.URL,
		recording.SizeBytes,
		recording.CreatedAt,
	)
	return err
}

func (r *recordingRepository) FindByBlobID(ctx context.Context, blobID uuid.UUID) (*domain.Recording, error) {
	query := `
		SELECT ` + recordingColumns + `
		FROM recordings
		WHERE blob_id = $1
	`
	var recording domain.Recording
	err := r.db.QueryRowContext(ctx, query, blobID).Scan(
		&recording.BlobID,
		&recording.SessionID,
		&recording.FileID,
		&recording.URL,
		&recording.SizeBytes,
		&recording.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &recording, nil
}

func (r *recordingRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]domain.Recording, error) {
	query := `
		SELECT ` + recordingColumns + `
		FROM recordings
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recordings := make([]domain.Recording, 0)
	for rows.Next() {
		var recording domain.Recording
		if err := rows.Scan(
			&recording.BlobID,
			&recording.SessionID,
			&recording.FileID,
			&recording.URL,
			&recording.SizeBytes,
			&recording.CreatedAt,
		); err != nil {
			return nil, err
		}
		recordings = append(recordings, recording)
	}
	return recordings, rows.Err()
}

func (r *recordingRepository) Delete(ctx context.Context, blobID uuid.UUID) error {
	query := `DELETE FROM recordings WHERE blob_id = $1`
	_, err := r.db.ExecContext(ctx, query, blobID)
	return err
}
