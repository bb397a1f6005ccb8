// Package janitor pauses interview sessions that were abandoned without an
// exit: still in progress on disk, no live controller, and untouched for
// longer than the configured threshold. Paused sessions resume normally the
// next time the candidate comes back.
package janitor

import (
	"context"
	"time"

	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/interview"
	"github.com/intervu-ai/intervu-server/internal/timer"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 30 * time.Second

type Janitor struct {
	sessions   domain.SessionRepository
	hub        *interview.Hub
	clock      timer.Clock
	staleAfter time.Duration
	log        *zap.Logger
	cron       *cron.Cron
}

func New(
	sessions domain.SessionRepository,
	hub *interview.Hub,
	clock timer.Clock,
	staleAfter time.Duration,
	log *zap.Logger,
) *Janitor {
	return &Janitor{
		sessions:   sessions,
		hub:        hub,
		clock:      clock,
		staleAfter: staleAfter,
		log:        log,
	}
}

// Start schedules the sweep once a minute. Stop with Stop.
func (j *Janitor) Start() error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		j.Sweep(ctx)
	}); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

func (j *Janitor) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}

// Sweep pauses every stale session that has no live controller. A session
// with a controller is never stale regardless of its updated_at: its tick
// loop is what keeps it moving.
func (j *Janitor) Sweep(ctx context.Context) {
	cutoff := j.clock.Now().Add(-j.staleAfter)
	stale, err := j.sessions.FindInProgressUpdatedBefore(ctx, cutoff)
	if err != nil {
		j.log.Error("janitor sweep query failed", zap.Error(err))
		return
	}

	for i := range stale {
		session := stale[i]
		if _, live := j.hub.Get(session.ID); live {
			continue
		}

		session.Status = domain.SessionStatusPaused
		session.UpdatedAt = j.clock.Now()
		if err := j.sessions.Update(ctx, &session); err != nil {
			j.log.Error("failed to pause stale session",
				zap.String("session_id", session.ID.String()),
				zap.Error(err),
			)
			continue
		}

		j.log.Info("paused stale session", zap.String("session_id", session.ID.String()))
	}
}
