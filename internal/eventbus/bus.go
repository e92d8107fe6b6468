package eventbus

import (
	"errors"
	"sync"
	"time"

	"github.com/Rorical/tunneldesk/internal/protocol"
	"github.com/Rorical/tunneldesk/internal/store"
)

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
	ErrChannelFull = errors.New("channel is full")
	ErrClosed      = errors.New("event bus is closed")
)

// UIEvent represents events sent from UI to Core
type UIEvent interface {
	UIEvent()
}

// CoreEvent represents events sent from Core to UI
type CoreEvent interface {
	CoreEvent()
}

// StartTunnelEvent - UI asks core to expose something. Kind is the tunnel
// type suffix of the start request ("HTTP", "Directory", "WebDav").
type StartTunnelEvent struct {
	Kind           string
	Host           string
	Port           int
	HTTPS          bool
	Path           string
	DisableListing bool // Directory only
	Remote         protocol.RemoteEndpoint
}

func (e StartTunnelEvent) UIEvent() {}

type StopTunnelEvent struct {
	TunnelID string
}

func (e StopTunnelEvent) UIEvent() {}

// DeleteTunnelEvent - UI drops a stopped or failed tunnel from the list
type DeleteTunnelEvent struct {
	TunnelID string
}

func (e DeleteTunnelEvent) UIEvent() {}

type LoginEvent struct{}

func (e LoginEvent) UIEvent() {}

type LogoutEvent struct{}

func (e LogoutEvent) UIEvent() {}

// OpenInBrowserEvent - Target is either a URL or a tunnel id
type OpenInBrowserEvent struct {
	Target string
}

func (e OpenInBrowserEvent) UIEvent() {}

// CopyAddressEvent - UI asks core to put a tunnel's first site address on the clipboard
type CopyAddressEvent struct {
	TunnelID string
}

func (e CopyAddressEvent) UIEvent() {}

// StateUpdateEvent - Core pushes state changes to UI
type StateUpdateEvent struct {
	Snapshot store.Snapshot
}

func (e StateUpdateEvent) CoreEvent() {}

// NoticeEvent - Core reports the outcome of a UI request that has no
// place in the snapshot
type NoticeEvent struct {
	Message string
	Error   error
}

func (e NoticeEvent) CoreEvent() {}

// EventBusError represents errors in event processing
type EventBusError struct {
	Operation string
	Err       error
	Timestamp time.Time
}

func (e EventBusError) Error() string {
	return e.Operation + ": " + e.Err.Error()
}

func (e EventBusError) Unwrap() error {
	return e.Err
}

// CircuitBreakerState represents the state of circuit breaker
type CircuitBreakerState int

const (
	CircuitClosed CircuitBreakerState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker implements circuit breaker pattern
type CircuitBreaker struct {
	mu              sync.Mutex
	maxFailures     int
	resetTimeout    time.Duration
	failureCount    int
	lastFailureTime time.Time
	state           CircuitBreakerState
	now             func() time.Time
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
		now:          time.Now,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen {
		// Check if we should transition to half-open
		if cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
		}
	}
	return cb.state == CircuitOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.state = CircuitClosed
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount++
	cb.lastFailureTime = cb.now()

	if cb.failureCount >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// EventBus handles communication between UI and Core. Each direction has
// its own circuit breaker. Snapshots travel on a separate one-slot channel
// where the newest revision wins.
type EventBus struct {
	mu            sync.RWMutex
	closed        bool
	uiToCore      chan UIEvent
	coreToUI      chan CoreEvent
	stateUpdates  chan StateUpdateEvent
	stateMu       sync.Mutex // serializes PublishState
	errorCallback func(EventBusError)
	coreBreaker   *CircuitBreaker // guards SendToCore
	uiBreaker     *CircuitBreaker // guards SendToUI
}

func NewEventBus() *EventBus {
	return &EventBus{
		uiToCore:     make(chan UIEvent, 100),
		coreToUI:     make(chan CoreEvent, 100),
		stateUpdates: make(chan StateUpdateEvent, 1),
		coreBreaker:  NewCircuitBreaker(5, 30*time.Second),
		uiBreaker:    NewCircuitBreaker(5, 30*time.Second),
	}
}

func (eb *EventBus) SetErrorCallback(callback func(EventBusError)) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.errorCallback = callback
}

func (eb *EventBus) reportError(cb *CircuitBreaker, operation string, err error) error {
	busError := EventBusError{
		Operation: operation,
		Err:       err,
		Timestamp: time.Now(),
	}

	cb.RecordFailure()

	if eb.errorCallback != nil {
		eb.errorCallback(busError)
	}
	return busError
}

func (eb *EventBus) SendToCore(event UIEvent) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.closed {
		return ErrClosed
	}
	if eb.coreBreaker.IsOpen() {
		return eb.reportError(eb.coreBreaker, "SendToCore", ErrCircuitOpen)
	}

	select {
	case eb.uiToCore <- event:
		eb.coreBreaker.RecordSuccess()
		return nil
	default:
		return eb.reportError(eb.coreBreaker, "SendToCore", ErrChannelFull)
	}
}

// SendToUI queues a notice for the UI. Snapshots go through PublishState.
func (eb *EventBus) SendToUI(event CoreEvent) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.closed {
		return ErrClosed
	}
	if eb.uiBreaker.IsOpen() {
		return eb.reportError(eb.uiBreaker, "SendToUI", ErrCircuitOpen)
	}

	select {
	case eb.coreToUI <- event:
		eb.uiBreaker.RecordSuccess()
		return nil
	default:
		return eb.reportError(eb.uiBreaker, "SendToUI", ErrChannelFull)
	}
}

// PublishState replaces the snapshot the UI has not picked up yet. A pending
// snapshot with a higher revision is kept. It never blocks and never trips
// a breaker.
func (eb *EventBus) PublishState(event StateUpdateEvent) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.closed {
		return ErrClosed
	}

	eb.stateMu.Lock()
	defer eb.stateMu.Unlock()
	select {
	case pending := <-eb.stateUpdates:
		if pending.Snapshot.Revision > event.Snapshot.Revision {
			event = pending
		}
	default:
	}
	eb.stateUpdates <- event
	return nil
}

func (eb *EventBus) UIToCore() <-chan UIEvent {
	return eb.uiToCore
}

func (eb *EventBus) CoreToUI() <-chan CoreEvent {
	return eb.coreToUI
}

// StateUpdates delivers the latest snapshot
func (eb *EventBus) StateUpdates() <-chan StateUpdateEvent {
	return eb.stateUpdates
}

// GetCircuitBreakerState reports the breaker guarding UI commands
func (eb *EventBus) GetCircuitBreakerState() CircuitBreakerState {
	return eb.coreBreaker.State()
}

// Close closes every channel. Sends after Close return ErrClosed.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.closed {
		return
	}
	eb.closed = true
	close(eb.uiToCore)
	close(eb.coreToUI)
	close(eb.stateUpdates)
}
