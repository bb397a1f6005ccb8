package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Recording is the metadata row for one uploaded answer recording. The blob
// itself lives in external file storage; BlobID is the key the client links
// into its Answer. Recordings are strictly best-effort: an Answer without
// one is always valid.
type Recording struct {
	BlobID    uuid.UUID `json:"blob_id"`
	SessionID uuid.UUID `json:"session_id"`
	FileID    string    `json:"-"`
	URL       string    `json:"url"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type RecordingRepository interface {
	Create(ctx context.Context, recording *Recording) error
	FindByBlobID(ctx context.Context, blobID uuid.UUID) (*Recording, error)
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]Recording, error)
	Delete(ctx context.Context, blobID uuid.UUID) error
}
