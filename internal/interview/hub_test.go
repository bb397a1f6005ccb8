package interview

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHubController(t *testing.T) *Controller {
	t.Helper()
	session := makeSession(domain.DifficultyEasy)
	c, _ := newTestController(session, &stubScoring{
		grade:   oracle.Grade{Score: 5},
		summary: oracle.Summary{FinalScore: 50, Summary: "ok"},
	}, newFakeClock())
	return c
}

func TestHubAttachesOneControllerPerSession(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()

	var built int
	var mu sync.Mutex
	factory := func() (*Controller, error) {
		mu.Lock()
		built++
		mu.Unlock()
		return newHubController(t), nil
	}

	var wg sync.WaitGroup
	results := make([]*Controller, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := hub.GetOrAttach(sessionID, factory)
			require.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, built)
	for _, c := range results[1:] {
		assert.Same(t, results[0], c)
	}
}

func TestHubGetReturnsAttached(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()

	_, ok := hub.Get(sessionID)
	assert.False(t, ok)

	c, err := hub.GetOrAttach(sessionID, func() (*Controller, error) {
		return newHubController(t), nil
	})
	require.NoError(t, err)

	got, ok := hub.Get(sessionID)
	assert.True(t, ok)
	assert.Same(t, c, got)
}

func TestHubPropagatesFactoryError(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()
	wantErr := errors.New("session not found")

	_, err := hub.GetOrAttach(sessionID, func() (*Controller, error) {
		return nil, wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	_, ok := hub.Get(sessionID)
	assert.False(t, ok, "failed attach must not leave an entry behind")
}

func TestHubAttachDoesNotBlockOtherSessions(t *testing.T) {
	hub := NewHub()
	slowID := uuid.New()
	otherID := uuid.New()

	started := make(chan struct{})
	release := make(chan struct{})
	attached := make(chan *Controller, 1)
	go func() {
		c, err := hub.GetOrAttach(slowID, func() (*Controller, error) {
			close(started)
			<-release
			return newHubController(t), nil
		})
		assert.NoError(t, err)
		attached <- c
	}()
	<-started

	// A pending attach is not live yet and must not block lookups.
	_, ok := hub.Get(slowID)
	assert.False(t, ok)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := hub.GetOrAttach(otherID, func() (*Controller, error) {
			return newHubController(t), nil
		})
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unrelated session blocked behind an in-flight attach")
	}

	close(release)
	select {
	case c := <-attached:
		got, ok := hub.Get(slowID)
		assert.True(t, ok)
		assert.Same(t, c, got)
	case <-time.After(time.Second):
		t.Fatal("slow attach never completed")
	}
}

func TestHubRemovesControllerWhenDone(t *testing.T) {
	hub := NewHub()
	sessionID := uuid.New()

	c, err := hub.GetOrAttach(sessionID, func() (*Controller, error) {
		return newHubController(t), nil
	})
	require.NoError(t, err)

	c.Close()

	assert.Eventually(t, func() bool {
		_, ok := hub.Get(sessionID)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubShutdownClosesAllControllers(t *testing.T) {
	hub := NewHub()

	controllers := make([]*Controller, 3)
	for i := range controllers {
		c, err := hub.GetOrAttach(uuid.New(), func() (*Controller, error) {
			return newHubController(t), nil
		})
		require.NoError(t, err)
		controllers[i] = c
	}
	assert.Len(t, hub.ActiveIDs(), 3)

	hub.Shutdown()

	for _, c := range controllers {
		select {
		case <-c.Done():
		case <-time.After(time.Second):
			t.Fatal("controller did not stop on shutdown")
		}
	}
}

func TestHubShutdownLeavesSessionsResumable(t *testing.T) {
	hub := NewHub()
	session := makeSession(domain.DifficultyEasy)
	repo := &fakeSessionRepo{}
	c := NewController(session, repo, &stubScoring{}, newFakeClock(), Config{AutoStartSec: 5}, zap.NewNop())

	attached, err := hub.GetOrAttach(session.ID, func() (*Controller, error) {
		c.Resume()
		return c, nil
	})
	require.NoError(t, err)
	require.Same(t, c, attached)

	hub.Shutdown()
	<-c.Done()

	assert.Equal(t, domain.SessionStatusInProgress, session.Status, "close must not complete the session")
	assert.Nil(t, session.FinalScore)
}
