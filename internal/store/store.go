package store

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Rorical/tunneldesk/internal/models"
	"github.com/Rorical/tunneldesk/internal/protocol"
)

// Snapshot is a deep copy of the three slices, safe to hand to views
type Snapshot struct {
	Tunnels  TunnelsState
	Logs     LogsState
	Session  SessionState
	LastSeq  uint64 // Highest inbound sequence number accepted
	Revision uint64 // Incremented on every state change
}

// Store owns the state slices. Dispatch is the only writer.
type Store struct {
	mu       sync.RWMutex
	tunnels  TunnelsState
	logs     LogsState
	session  SessionState
	lastSeq  uint64
	revision uint64

	now         func() time.Time
	subscribers []func(Snapshot)
}

type Option func(*Store)

// WithClock replaces time.Now for timestamps of actions dispatched without one
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogLimit caps every log buffer at limit entries
func WithLogLimit(limit int) Option {
	return func(s *Store) { s.logs = NewLogsState(limit) }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		logs:    NewLogsState(DefaultLogLimit),
		session: NewSessionState(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every dispatch.
// fn runs on the dispatching goroutine and must not call Dispatch.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Dispatch folds a into every slice, in arrival order
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	a = s.stamp(a)
	if recv, ok := a.(ReceivedAction); ok && s.isStale(recv.Envelope) {
		s.logs = s.logs.communicate(models.LogEntry{
			Timestamp: recv.At,
			Message:   fmt.Sprintf("dropped out-of-order %s (seq %d <= %d)", recv.Envelope.Type, recv.Envelope.Seq, s.lastSeq),
			Class:     models.ClassWarning,
		})
	} else {
		if ok && recv.Envelope.Seq != 0 {
			s.lastSeq = recv.Envelope.Seq
		}
		// Every socket session numbers its frames from 1
		if conn, isConn := a.(ConnectionAction); isConn && conn.Connected {
			s.lastSeq = 0
		}
		s.tunnels = ReduceTunnels(s.tunnels, a)
		s.logs = ReduceLogs(s.logs, a)
		s.session = ReduceSession(s.session, a)
	}
	s.revision++
	snap := s.snapshotLocked()
	subscribers := slices.Clone(s.subscribers)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(snap)
	}
}

// isStale reports whether env arrived after a newer envelope. Envelopes
// without a sequence number are always accepted.
func (s *Store) isStale(env protocol.Envelope) bool {
	return env.Seq != 0 && env.Seq <= s.lastSeq
}

func (s *Store) stamp(a Action) Action {
	switch v := a.(type) {
	case SentAction:
		if v.At.IsZero() {
			v.At = s.now()
		}
		return v
	case ReceivedAction:
		if v.At.IsZero() {
			v.At = s.now()
		}
		return v
	case SendFailedAction:
		if v.At.IsZero() {
			v.At = s.now()
		}
		return v
	case ConnectionAction:
		if v.At.IsZero() {
			v.At = s.now()
		}
		return v
	}
	return a
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Tunnel looks a tunnel up by id
func (s *Store) Tunnel(id string) (models.Tunnel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.tunnels.indexOf(id)
	if i == -1 {
		return models.Tunnel{}, false
	}
	return s.tunnels.Tunnels[i].Clone(), true
}

func (s *Store) snapshotLocked() Snapshot {
	tunnels := make([]models.Tunnel, len(s.tunnels.Tunnels))
	for i, t := range s.tunnels.Tunnels {
		tunnels[i] = t.Clone()
	}

	tunnelLogs := make(map[string][]models.LogEntry, len(s.logs.TunnelLogs))
	for id, entries := range s.logs.TunnelLogs {
		tunnelLogs[id] = slices.Clone(entries)
	}

	session := s.session
	if session.User != nil {
		u := *session.User
		u.Claims = maps.Clone(u.Claims)
		session.User = &u
	}
	if session.AuthInstructions != nil {
		ai := *session.AuthInstructions
		session.AuthInstructions = &ai
	}

	return Snapshot{
		Tunnels: TunnelsState{Tunnels: tunnels},
		Logs: LogsState{
			TunnelLogs:        tunnelLogs,
			CommunicationLogs: slices.Clone(s.logs.CommunicationLogs),
			Limit:             s.logs.Limit,
		},
		Session:  session,
		LastSeq:  s.lastSeq,
		Revision: s.revision,
	}
}
