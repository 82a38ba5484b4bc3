package commission

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/urmzd/commissioner/pkg/device"
)

// SessionState is the lifecycle state of a tracked session.
type SessionState string

const (
	SessionRunning   SessionState = "running"
	SessionSucceeded SessionState = "succeeded"
	SessionFailed    SessionState = "failed"
)

// Session is a snapshot of one tracked commissioning run.
type Session struct {
	ID         string                      `json:"session_id"`
	DeviceName string                      `json:"device_name"`
	Address    string                      `json:"device_address"`
	State      SessionState                `json:"state"`
	StartedAt  time.Time                   `json:"started_at"`
	Result     *device.CommissioningResult `json:"result,omitempty"`
}

type trackedSession struct {
	Session
	cancel context.CancelFunc
	done   chan struct{}
}

// DefaultRetention is how many finished sessions a Tracker keeps.
const DefaultRetention = 256

// Tracker runs commissioning attempts in the background, keyed by session
// id. Sessions live in memory only; the oldest finished sessions are
// dropped beyond the retention limit.
type Tracker struct {
	commissioner device.Commissioner
	logger       zerolog.Logger
	retention    int

	mu       sync.Mutex
	sessions map[string]*trackedSession
	wg       sync.WaitGroup
	base     context.Context
	stop     context.CancelFunc
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithRetention sets how many finished sessions are kept.
func WithRetention(n int) TrackerOption {
	return func(t *Tracker) {
		if n > 0 {
			t.retention = n
		}
	}
}

// NewTracker creates a Tracker around a Commissioner.
func NewTracker(c device.Commissioner, logger zerolog.Logger, opts ...TrackerOption) *Tracker {
	base, stop := context.WithCancel(context.Background())
	t := &Tracker{
		commissioner: c,
		logger:       logger.With().Str("component", "tracker").Logger(),
		retention:    DefaultRetention,
		sessions:     make(map[string]*trackedSession),
		base:         base,
		stop:         stop,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start launches a run and returns its session id. An empty sessionID gets
// a generated one. Reusing the id of a running session fails with
// device.ErrSessionActive; a finished session's id may be reused.
func (t *Tracker) Start(req device.CommissioningRequest, sessionID string) (string, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.base.Err(); err != nil {
		return "", fmt.Errorf("tracker stopped: %w", err)
	}
	if s, ok := t.sessions[sessionID]; ok && s.State == SessionRunning {
		return "", fmt.Errorf("%w: %s", device.ErrSessionActive, sessionID)
	}

	ctx, cancel := context.WithCancel(t.base)
	s := &trackedSession{
		Session: Session{
			ID:         sessionID,
			DeviceName: req.DeviceName,
			Address:    req.DeviceAddress,
			State:      SessionRunning,
			StartedAt:  time.Now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	t.sessions[sessionID] = s

	t.wg.Add(1)
	go t.run(ctx, s, req)

	t.logger.Info().Str("session", sessionID).Str("device", req.DeviceName).Msg("Commissioning session started")
	return sessionID, nil
}

func (t *Tracker) run(ctx context.Context, s *trackedSession, req device.CommissioningRequest) {
	defer t.wg.Done()
	defer close(s.done)
	defer s.cancel()

	res := t.commissioner.Commission(ctx, req, s.ID)

	t.mu.Lock()
	s.Result = &res
	if res.Succeeded {
		s.State = SessionSucceeded
	} else {
		s.State = SessionFailed
	}
	t.pruneLocked()
	t.mu.Unlock()
}

// pruneLocked drops the oldest finished sessions beyond the retention
// limit. Running sessions are never dropped. t.mu must be held.
func (t *Tracker) pruneLocked() {
	var finished []*trackedSession
	for _, s := range t.sessions {
		if s.State != SessionRunning {
			finished = append(finished, s)
		}
	}
	if len(finished) <= t.retention {
		return
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].StartedAt.Before(finished[j].StartedAt) })
	for _, s := range finished[:len(finished)-t.retention] {
		delete(t.sessions, s.ID)
	}
}

// Get returns a snapshot of the session.
func (t *Tracker) Get(sessionID string) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", device.ErrSessionNotFound, sessionID)
	}
	return s.Session, nil
}

// List returns snapshots of every known session.
func (t *Tracker) List() []Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s.Session)
	}
	return out
}

// Cancel cancels a running session's context. Cancelling a finished
// session is a no-op.
func (t *Tracker) Cancel(sessionID string) error {
	t.mu.Lock()
	s, ok := t.sessions[sessionID]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrSessionNotFound, sessionID)
	}
	s.cancel()
	return nil
}

// Wait blocks until the session finishes or ctx is done.
func (t *Tracker) Wait(ctx context.Context, sessionID string) (Session, error) {
	t.mu.Lock()
	s, ok := t.sessions[sessionID]
	t.mu.Unlock()
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", device.ErrSessionNotFound, sessionID)
	}

	select {
	case <-s.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return s.Session, nil
	case <-ctx.Done():
		return Session{}, ctx.Err()
	}
}

// Shutdown cancels every running session and waits for them to finish or
// for ctx to expire.
func (t *Tracker) Shutdown(ctx context.Context) error {
	// Start adds to wg under mu after checking base, so no Add can follow.
	t.mu.Lock()
	t.stop()
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
