package store

import (
	"slices"

	"github.com/google/uuid"

	"github.com/Rorical/tunneldesk/internal/models"
	"github.com/Rorical/tunneldesk/internal/protocol"
)

// TunnelsState is the tunnel list slice
type TunnelsState struct {
	Tunnels []models.Tunnel
}

func (s TunnelsState) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.Tunnels, func(t models.Tunnel) bool { return t.TunnelID == id })
}

// with returns a copy of s where the tunnel at i has been replaced by t
func (s TunnelsState) with(i int, t models.Tunnel) TunnelsState {
	tunnels := slices.Clone(s.Tunnels)
	tunnels[i] = t
	return TunnelsState{Tunnels: tunnels}
}

func (s TunnelsState) push(t models.Tunnel) TunnelsState {
	if t.TunnelID == "" {
		t.TunnelID = uuid.NewString()
	}
	tunnels := append(slices.Clip(s.Tunnels), t)
	return TunnelsState{Tunnels: tunnels}
}

func (s TunnelsState) without(id string) TunnelsState {
	if s.indexOf(id) == -1 {
		return s
	}
	tunnels := slices.DeleteFunc(slices.Clone(s.Tunnels), func(t models.Tunnel) bool { return t.TunnelID == id })
	return TunnelsState{Tunnels: tunnels}
}

// ReduceTunnels folds a into s. s is never modified in place.
func ReduceTunnels(s TunnelsState, a Action) TunnelsState {
	switch a := a.(type) {
	case SentAction:
		return reduceTunnelsSent(s, a)
	case ReceivedAction:
		return reduceTunnelsReceived(s, a)
	case SendFailedAction:
		if !a.Envelope.Type.IsTunnelStartRequest() {
			return s
		}
		var req protocol.StartRequest
		if err := a.Envelope.DecodePayload(&req); err != nil {
			return s
		}
		i := s.indexOf(req.Remote.TunnelID)
		if i == -1 {
			return s
		}
		t := s.Tunnels[i].Clone()
		t.Phase = models.PhaseFailed
		t.Loading = false
		t.LoadingMsg = ""
		t.Error = true
		t.ErrorMsg = a.Err.Error()
		return s.with(i, t)
	case DeleteTunnelAction:
		return s.without(a.TunnelID)
	}
	return s
}

func reduceTunnelsSent(s TunnelsState, a SentAction) TunnelsState {
	if !a.Envelope.Type.IsTunnelStartRequest() {
		return s
	}
	var req protocol.StartRequest
	if err := a.Envelope.DecodePayload(&req); err != nil {
		return s
	}
	remote := req.Remote
	if remote.TunnelID == "" || s.indexOf(remote.TunnelID) != -1 {
		return s
	}
	return s.push(models.Tunnel{
		TunnelID:           remote.TunnelID,
		SiteID:             remote.SiteID,
		Type:               models.TunnelType(a.Envelope.Type.TunnelKind()),
		Phase:              models.PhasePending,
		Loading:            true,
		LoadingMsg:         "Waiting for backend",
		UsingBasicAuth:     remote.BasicAuthUsername != "",
		BasicAuthUsername:  remote.BasicAuthUsername,
		BasicAuthPassword:  remote.BasicAuthPassword,
		Domain:             remote.Domain,
		ProxyErrorDisabled: remote.DisableProxyErrorPage,
		OldCiphersDisabled: remote.DisableOldCiphers,
		RequestSeq:         a.Envelope.Seq,
	})
}

func reduceTunnelsReceived(s TunnelsState, a ReceivedAction) TunnelsState {
	env := a.Envelope
	switch env.Type {
	case protocol.TypeTunnelStart:
		var p protocol.TunnelStart
		if env.DecodePayload(&p) != nil {
			return s
		}
		i := s.indexOf(p.TunnelID)
		if i == -1 {
			return s.push(models.Tunnel{
				TunnelID:  p.TunnelID,
				SiteID:    p.SiteID,
				LocalAddr: p.LocalAddr,
				Phase:     models.PhasePending,
			})
		}
		t := s.Tunnels[i].Clone()
		if p.SiteID != "" {
			t.SiteID = p.SiteID
		}
		if p.LocalAddr != "" {
			t.LocalAddr = p.LocalAddr
		}
		return s.with(i, t)

	case protocol.TypeTunnelStartSuccess:
		var p protocol.TunnelStartSuccess
		if env.DecodePayload(&p) != nil {
			return s
		}
		started := func(t models.Tunnel) models.Tunnel {
			if p.SiteID != "" {
				t.SiteID = p.SiteID
			}
			if p.LocalAddr != "" {
				t.LocalAddr = p.LocalAddr
			}
			t.SiteAddrs = append([]string(nil), p.SiteAddrs...)
			t.StartTime = a.At
			t.Phase = models.PhaseStarted
			t.Started = true
			t.Loading = false
			t.LoadingMsg = ""
			t.Error = false
			t.ErrorMsg = ""
			return t
		}
		i := s.indexOf(p.TunnelID)
		if i == -1 {
			return s.push(started(models.Tunnel{TunnelID: p.TunnelID}))
		}
		return s.with(i, started(s.Tunnels[i].Clone()))

	case protocol.TypeTunnelStartFailure:
		var p protocol.TunnelStartFailure
		if env.DecodePayload(&p) != nil {
			return s
		}
		failed := func(t models.Tunnel) models.Tunnel {
			t.Phase = models.PhaseFailed
			t.Started = false
			t.Loading = false
			t.LoadingMsg = ""
			t.Error = true
			t.ErrorMsg = p.Error
			return t
		}
		i := s.indexOf(p.TunnelID)
		if i == -1 {
			return s.push(failed(models.Tunnel{TunnelID: p.TunnelID}))
		}
		return s.with(i, failed(s.Tunnels[i].Clone()))

	case protocol.TypeTunnelStop:
		var p protocol.TunnelStop
		if env.DecodePayload(&p) != nil {
			return s
		}
		return s.without(p.TunnelID)

	case protocol.TypeLoadingStart, protocol.TypeLoadingSuccess, protocol.TypeLoadingFailure:
		var p protocol.Loading
		if env.DecodePayload(&p) != nil {
			return s
		}
		i := s.indexOf(p.TunnelID)
		if i == -1 {
			return s
		}
		t := s.Tunnels[i].Clone()
		switch env.Type {
		case protocol.TypeLoadingStart:
			t.Loading = true
			t.LoadingMsg = p.Message
		case protocol.TypeLoadingSuccess:
			t.Loading = false
			t.LoadingMsg = ""
		case protocol.TypeLoadingFailure:
			t.Loading = false
			t.LoadingMsg = ""
			t.Error = true
			t.ErrorMsg = p.Error
			t.Phase = models.PhaseFailed
		}
		return s.with(i, t)
	}
	return s
}
