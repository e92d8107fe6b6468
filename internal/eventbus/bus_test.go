package eventbus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/tunneldesk/internal/store"
)

func TestEventBus_RoundTrip(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	require.NoError(t, eb.SendToCore(StopTunnelEvent{TunnelID: "abc"}))
	got := <-eb.UIToCore()
	assert.Equal(t, StopTunnelEvent{TunnelID: "abc"}, got)

	require.NoError(t, eb.SendToUI(NoticeEvent{Message: "copied"}))
	assert.Equal(t, NoticeEvent{Message: "copied"}, <-eb.CoreToUI())
}

func TestEventBus_FullChannelOpensCircuit(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	var reported []EventBusError
	eb.SetErrorCallback(func(e EventBusError) { reported = append(reported, e) })

	for i := 0; i < cap(eb.uiToCore); i++ {
		require.NoError(t, eb.SendToCore(LoginEvent{}))
	}
	for i := 0; i < 5; i++ {
		err := eb.SendToCore(LoginEvent{})
		assert.ErrorIs(t, err, ErrChannelFull)
	}
	assert.Equal(t, CircuitOpen, eb.GetCircuitBreakerState())
	assert.ErrorIs(t, eb.SendToCore(LoginEvent{}), ErrCircuitOpen)

	// The other direction has its own breaker
	assert.NoError(t, eb.SendToUI(NoticeEvent{}))
	assert.Equal(t, CircuitClosed, eb.uiBreaker.State())
	assert.Len(t, reported, 6)
	assert.Equal(t, "SendToCore", reported[0].Operation)
}

func TestEventBus_NoticeBacklogLeavesCommandsOpen(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	for i := 0; i < cap(eb.coreToUI)+5; i++ {
		_ = eb.SendToUI(NoticeEvent{})
	}
	assert.Equal(t, CircuitOpen, eb.uiBreaker.State())
	assert.NoError(t, eb.SendToCore(StopTunnelEvent{TunnelID: "abc"}))
	assert.Equal(t, CircuitClosed, eb.GetCircuitBreakerState())
}

func TestEventBus_PublishStateKeepsNewest(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	for rev := uint64(1); rev <= 200; rev++ {
		require.NoError(t, eb.PublishState(StateUpdateEvent{Snapshot: store.Snapshot{Revision: rev}}))
	}
	// A late publish of an older revision does not replace the pending one
	require.NoError(t, eb.PublishState(StateUpdateEvent{Snapshot: store.Snapshot{Revision: 150}}))

	got := <-eb.StateUpdates()
	assert.Equal(t, uint64(200), got.Snapshot.Revision)
	select {
	case <-eb.StateUpdates():
		t.Fatal("only one snapshot should be pending")
	default:
	}
	assert.Equal(t, CircuitClosed, eb.uiBreaker.State())
}

func TestCircuitBreaker_HalfOpensAfterTimeout(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, 30*time.Second)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	now = now.Add(31 * time.Second)
	assert.False(t, cb.IsOpen())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestEventBus_CloseIsIdempotent(t *testing.T) {
	eb := NewEventBus()
	eb.Close()
	eb.Close()

	assert.ErrorIs(t, eb.SendToCore(LoginEvent{}), ErrClosed)
	assert.ErrorIs(t, eb.SendToUI(NoticeEvent{}), ErrClosed)
	assert.ErrorIs(t, eb.PublishState(StateUpdateEvent{}), ErrClosed)

	_, ok := <-eb.UIToCore()
	assert.False(t, ok)
}

func TestEventBusError_Unwraps(t *testing.T) {
	err := EventBusError{Operation: "SendToUI", Err: ErrChannelFull}
	assert.True(t, errors.Is(err, ErrChannelFull))
	assert.Equal(t, "SendToUI: channel is full", err.Error())
}
