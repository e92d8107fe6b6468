package store

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Rorical/tunneldesk/internal/models"
	"github.com/Rorical/tunneldesk/internal/protocol"
)

// DefaultLogLimit caps every log buffer when no limit is configured
const DefaultLogLimit = 1000

// LogsState holds the per-tunnel buffers and the communication log
type LogsState struct {
	TunnelLogs        map[string][]models.LogEntry
	CommunicationLogs []models.LogEntry
	Limit             int
}

func NewLogsState(limit int) LogsState {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return LogsState{
		TunnelLogs: make(map[string][]models.LogEntry),
		Limit:      limit,
	}
}

// appendCapped never writes into the backing array of entries, so earlier
// snapshots stay intact
func appendCapped(entries []models.LogEntry, entry models.LogEntry, limit int) []models.LogEntry {
	out := append(slices.Clip(entries), entry)
	if limit > 0 && len(out) > limit {
		out = slices.Clip(out[len(out)-limit:])
	}
	return out
}

func (s LogsState) communicate(entry models.LogEntry) LogsState {
	s.CommunicationLogs = appendCapped(s.CommunicationLogs, entry, s.Limit)
	return s
}

func (s LogsState) appendTunnel(id string, entry models.LogEntry) LogsState {
	logs := maps.Clone(s.TunnelLogs)
	if logs == nil {
		logs = make(map[string][]models.LogEntry)
	}
	logs[id] = appendCapped(logs[id], entry, s.Limit)
	s.TunnelLogs = logs
	return s
}

func (s LogsState) dropTunnel(id string) LogsState {
	if _, ok := s.TunnelLogs[id]; !ok {
		return s
	}
	logs := maps.Clone(s.TunnelLogs)
	delete(logs, id)
	s.TunnelLogs = logs
	return s
}

func logClass(class string) models.LogClass {
	if class == "" {
		return models.ClassInfo
	}
	return models.LogClass(class)
}

// ReduceLogs folds a into s. s is never modified in place.
func ReduceLogs(s LogsState, a Action) LogsState {
	switch a := a.(type) {
	case SentAction:
		return s.communicate(models.LogEntry{
			Timestamp: a.At,
			Message:   a.Envelope.String(),
			Class:     models.ClassInfo,
		})

	case ReceivedAction:
		env := a.Envelope
		class := models.ClassInfo
		switch env.Type {
		case protocol.TypeTunnelLog:
			var p protocol.TunnelLog
			if env.DecodePayload(&p) == nil && p.TunnelID != "" {
				class = logClass(p.Class)
				s = s.appendTunnel(p.TunnelID, models.LogEntry{
					Timestamp: a.At,
					Message:   p.Message,
					Class:     class,
					TunnelID:  p.TunnelID,
				})
			}
		case protocol.TypeLog:
			var p protocol.Log
			if env.DecodePayload(&p) == nil {
				class = logClass(p.Class)
			}
		case protocol.TypeTunnelStop:
			var p protocol.TunnelStop
			if env.DecodePayload(&p) == nil {
				s = s.dropTunnel(p.TunnelID)
			}
		case protocol.TypeTunnelStartFailure, protocol.TypeLoadingFailure, protocol.TypeLoginFailure, protocol.TypeLogoutFailure:
			class = models.ClassDanger
		case protocol.TypeTunnelStartSuccess, protocol.TypeLoginSuccess, protocol.TypeLogoutSuccess:
			class = models.ClassSuccess
		}
		return s.communicate(models.LogEntry{
			Timestamp: a.At,
			Message:   env.String(),
			Class:     class,
		})

	case SendFailedAction:
		return s.communicate(models.LogEntry{
			Timestamp: a.At,
			Message:   fmt.Sprintf("failed to send %s: %v", a.Envelope.Type, a.Err),
			Class:     models.ClassDanger,
		})

	case DeleteTunnelAction:
		return s.dropTunnel(a.TunnelID)

	case ConnectionAction:
		if a.Connected {
			return s.communicate(models.LogEntry{Timestamp: a.At, Message: "connected to backend", Class: models.ClassSuccess})
		}
		msg := "disconnected from backend"
		if a.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, a.Err)
		}
		return s.communicate(models.LogEntry{Timestamp: a.At, Message: msg, Class: models.ClassWarning})
	}
	return s
}
