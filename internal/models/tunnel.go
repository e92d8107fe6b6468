package models

import "time"

// TunnelType identifies what a tunnel exposes
type TunnelType string

const (
	TunnelHTTP      TunnelType = "HTTP"
	TunnelDirectory TunnelType = "Directory"
	TunnelWebDav    TunnelType = "WebDav"
)

// TunnelPhase is the lifecycle tag of a tunnel: pending until the backend
// confirms or rejects the start request
type TunnelPhase int

const (
	PhasePending TunnelPhase = iota
	PhaseStarted
	PhaseFailed
)

func (p TunnelPhase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseStarted:
		return "started"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Tunnel is the client-side view of a backend forwarding session
type Tunnel struct {
	TunnelID string
	SiteID   string
	Type     TunnelType
	Phase    TunnelPhase

	Started    bool
	Loading    bool
	LoadingMsg string
	Error      bool
	ErrorMsg   string
	StartTime  time.Time

	UsingBasicAuth     bool
	BasicAuthUsername  string
	BasicAuthPassword  string
	Domain             string // Custom hostname requested by the user
	ProxyErrorDisabled bool
	OldCiphersDisabled bool

	LocalAddr string
	SiteAddrs []string

	RequestSeq uint64 // Sequence number of the start request that created it
}

// Clone returns a copy that shares no slices with t
func (t Tunnel) Clone() Tunnel {
	if t.SiteAddrs != nil {
		t.SiteAddrs = append([]string(nil), t.SiteAddrs...)
	}
	return t
}
