package interview

import (
	"sync"

	"github.com/google/uuid"
	"github.com/intervu-ai/intervu-server/internal/metrics"
)

// Hub tracks the live controller for each session. At most one controller
// exists per session id; completed or closed controllers remove themselves.
type Hub struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*attachEntry
}

// attachEntry reserves a session's slot while its factory is still running.
// ready is closed once controller and err are final; waiters read them only
// after that.
type attachEntry struct {
	ready      chan struct{}
	controller *Controller
	err        error
}

// live reports the controller without blocking: pending or failed attaches
// count as not live.
func (e *attachEntry) live() (*Controller, bool) {
	select {
	case <-e.ready:
		return e.controller, e.err == nil
	default:
		return nil, false
	}
}

func NewHub() *Hub {
	return &Hub{entries: make(map[uuid.UUID]*attachEntry)}
}

func (h *Hub) Get(sessionID uuid.UUID) (*Controller, bool) {
	h.mu.Lock()
	e, ok := h.entries[sessionID]
	h.mu.Unlock()

	if !ok {
		return nil, false
	}
	return e.live()
}

// GetOrAttach returns the live controller for the session, constructing one
// via factory when none exists. The slot is reserved under the hub lock but
// the factory itself runs outside it, so a slow attach (a resume that has to
// grade an expired answer first, say) never stalls commands for other
// sessions. Concurrent callers for the same session share one factory run.
func (h *Hub) GetOrAttach(sessionID uuid.UUID, factory func() (*Controller, error)) (*Controller, error) {
	h.mu.Lock()
	if e, ok := h.entries[sessionID]; ok {
		h.mu.Unlock()
		<-e.ready
		return e.controller, e.err
	}

	e := &attachEntry{ready: make(chan struct{})}
	h.entries[sessionID] = e
	h.mu.Unlock()

	c, err := factory()

	h.mu.Lock()
	if err != nil {
		delete(h.entries, sessionID)
		e.err = err
	} else {
		e.controller = c
	}
	h.mu.Unlock()
	close(e.ready)

	if err != nil {
		return nil, err
	}

	metrics.ActiveControllers.Inc()
	go func() {
		<-c.Done()
		h.remove(sessionID, c)
	}()

	return c, nil
}

// ActiveIDs lists sessions that currently have a live controller.
func (h *Hub) ActiveIDs() []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(h.entries))
	for id, e := range h.entries {
		if _, ok := e.live(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Shutdown closes every live controller without completing its session.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	controllers := make([]*Controller, 0, len(h.entries))
	for _, e := range h.entries {
		if c, ok := e.live(); ok {
			controllers = append(controllers, c)
		}
	}
	h.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}
}

func (h *Hub) remove(sessionID uuid.UUID, c *Controller) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.entries[sessionID]; ok && e.controller == c {
		delete(h.entries, sessionID)
		metrics.ActiveControllers.Dec()
	}
}
