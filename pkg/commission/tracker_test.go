package commission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/commissioner/pkg/device"
	"github.com/urmzd/commissioner/pkg/events"
)

// blockingCommissioner waits for release or cancellation before finishing.
type blockingCommissioner struct {
	release chan struct{}
	started chan string
}

func newBlockingCommissioner() *blockingCommissioner {
	return &blockingCommissioner{release: make(chan struct{}), started: make(chan string, 8)}
}

func (b *blockingCommissioner) Commission(ctx context.Context, req device.CommissioningRequest, sessionID string) device.CommissioningResult {
	b.started <- sessionID
	select {
	case <-b.release:
		return device.CommissioningResult{SessionID: sessionID, Succeeded: true, AssignedIdentity: "1000000000000001"}
	case <-ctx.Done():
		return device.CommissioningResult{SessionID: sessionID, ErrorDetail: ctx.Err().Error()}
	}
}

func (b *blockingCommissioner) TestConnection(context.Context, string) device.ProbeResult {
	return device.ProbeResult{}
}

func (b *blockingCommissioner) TransferToController(context.Context, string, string, string) bool {
	return false
}

func (b *blockingCommissioner) IsToolAvailable(context.Context) bool { return true }

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestTracker_StartAndComplete(t *testing.T) {
	c := newBlockingCommissioner()
	tr := NewTracker(c, zerolog.Nop())

	id, err := tr.Start(testRequest(), "")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, <-c.started)

	s, err := tr.Get(id)
	require.NoError(t, err)
	assert.Equal(t, SessionRunning, s.State)
	assert.Nil(t, s.Result)
	assert.Equal(t, "NOUS A8M Socket", s.DeviceName)

	close(c.release)
	s, err = tr.Wait(waitCtx(t), id)
	require.NoError(t, err)
	assert.Equal(t, SessionSucceeded, s.State)
	require.NotNil(t, s.Result)
	assert.Equal(t, "1000000000000001", s.Result.AssignedIdentity)
}

func TestTracker_DuplicateRunningSession(t *testing.T) {
	c := newBlockingCommissioner()
	tr := NewTracker(c, zerolog.Nop())

	_, err := tr.Start(testRequest(), "dup")
	require.NoError(t, err)

	_, err = tr.Start(testRequest(), "dup")
	assert.True(t, errors.Is(err, device.ErrSessionActive))

	close(c.release)
	_, err = tr.Wait(waitCtx(t), "dup")
	require.NoError(t, err)

	_, err = tr.Start(testRequest(), "dup")
	assert.NoError(t, err, "finished session ids can be reused")
}

func TestTracker_Cancel(t *testing.T) {
	c := newBlockingCommissioner()
	tr := NewTracker(c, zerolog.Nop())

	id, err := tr.Start(testRequest(), "cancel-me")
	require.NoError(t, err)
	<-c.started

	require.NoError(t, tr.Cancel(id))
	s, err := tr.Wait(waitCtx(t), id)
	require.NoError(t, err)
	assert.Equal(t, SessionFailed, s.State)
	assert.Equal(t, context.Canceled.Error(), s.Result.ErrorDetail)

	assert.NoError(t, tr.Cancel(id), "cancelling a finished session is a no-op")
}

func TestTracker_UnknownSession(t *testing.T) {
	tr := NewTracker(newBlockingCommissioner(), zerolog.Nop())

	_, err := tr.Get("missing")
	assert.True(t, errors.Is(err, device.ErrSessionNotFound))
	assert.True(t, errors.Is(tr.Cancel("missing"), device.ErrSessionNotFound))
	_, err = tr.Wait(context.Background(), "missing")
	assert.True(t, errors.Is(err, device.ErrSessionNotFound))
}

func TestTracker_Shutdown(t *testing.T) {
	c := newBlockingCommissioner()
	tr := NewTracker(c, zerolog.Nop())

	_, err := tr.Start(testRequest(), "a")
	require.NoError(t, err)
	_, err = tr.Start(testRequest(), "b")
	require.NoError(t, err)

	require.NoError(t, tr.Shutdown(waitCtx(t)))
	for _, s := range tr.List() {
		assert.Equal(t, SessionFailed, s.State)
	}

	_, err = tr.Start(testRequest(), "c")
	assert.Error(t, err)
}

func TestTracker_WithOrchestrator(t *testing.T) {
	rec := &events.Recorder{}
	o := newTestOrchestrator(healthyTools(), rec)
	tr := NewTracker(o, zerolog.Nop())

	id, err := tr.Start(testRequest(), "")
	require.NoError(t, err)

	s, err := tr.Wait(waitCtx(t), id)
	require.NoError(t, err)
	assert.Equal(t, SessionSucceeded, s.State)
	assertProgressWellFormed(t, rec.Progress(), id)
}

func TestTracker_RetentionDropsOldestFinished(t *testing.T) {
	c := newBlockingCommissioner()
	close(c.release)
	tr := NewTracker(c, zerolog.Nop(), WithRetention(2))

	for _, id := range []string{"s1", "s2", "s3"} {
		_, err := tr.Start(testRequest(), id)
		require.NoError(t, err)
		_, err = tr.Wait(waitCtx(t), id)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	_, err := tr.Get("s1")
	assert.True(t, errors.Is(err, device.ErrSessionNotFound))
	assert.Len(t, tr.List(), 2)
}

// quickCommissioner finishes sessions named quick-* at once and blocks the rest.
type quickCommissioner struct {
	*blockingCommissioner
}

func (q quickCommissioner) Commission(ctx context.Context, req device.CommissioningRequest, sessionID string) device.CommissioningResult {
	if strings.HasPrefix(sessionID, "quick-") {
		return device.CommissioningResult{SessionID: sessionID, Succeeded: true}
	}
	return q.blockingCommissioner.Commission(ctx, req, sessionID)
}

func TestTracker_RetentionKeepsRunning(t *testing.T) {
	c := quickCommissioner{newBlockingCommissioner()}
	tr := NewTracker(c, zerolog.Nop(), WithRetention(1))
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })

	_, err := tr.Start(testRequest(), "slow")
	require.NoError(t, err)
	for _, id := range []string{"quick-1", "quick-2"} {
		time.Sleep(time.Millisecond)
		_, err := tr.Start(testRequest(), id)
		require.NoError(t, err)
		_, err = tr.Wait(waitCtx(t), id)
		require.NoError(t, err)
	}

	s, err := tr.Get("slow")
	require.NoError(t, err)
	assert.Equal(t, SessionRunning, s.State)
	_, err = tr.Get("quick-1")
	assert.True(t, errors.Is(err, device.ErrSessionNotFound))
	_, err = tr.Get("quick-2")
	assert.NoError(t, err)
}

func TestTracker_StartRacingShutdown(t *testing.T) {
	tr := NewTracker(newBlockingCommissioner(), zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tr.Start(testRequest(), "")
		}()
	}
	require.NoError(t, tr.Shutdown(waitCtx(t)))
	wg.Wait()

	_, err := tr.Start(testRequest(), "late")
	assert.Error(t, err)
	for _, s := range tr.List() {
		_, err := tr.Wait(waitCtx(t), s.ID)
		require.NoError(t, err)
	}
}
