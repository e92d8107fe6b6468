package models

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Input       string // Command line contents
	Status      string // Status bar text
	StatusError bool   // Status describes a failure
	Width       int    // Terminal width
	Height      int    // Terminal height
	ShowHelp    bool
	ShowCommLog bool // Communication log instead of tunnel logs

	// Mirrored from the latest store snapshot
	Revision         uint64
	Connected        bool
	ConnectionError  string
	Tunnels          []Tunnel
	SelectedTunnel   int
	TunnelLogs       map[string][]LogEntry
	CommunicationLog []LogEntry

	LoggedIn         bool
	User             *User
	AuthInstructions *AuthInstructions
	AuthError        string
	Config           ConfigSnapshot
	Synced           bool
}

// Selected returns the tunnel under the cursor, if any
func (m *AppModel) Selected() (Tunnel, bool) {
	if m.SelectedTunnel < 0 || m.SelectedTunnel >= len(m.Tunnels) {
		return Tunnel{}, false
	}
	return m.Tunnels[m.SelectedTunnel], true
}

// Busy reports whether something is in flight
func (m *AppModel) Busy() bool {
	if !m.Synced {
		return true
	}
	for _, t := range m.Tunnels {
		if t.Loading {
			return true
		}
	}
	return false
}

// VisibleLogs returns the communication log or the selected tunnel's log
func (m *AppModel) VisibleLogs() []LogEntry {
	if m.ShowCommLog {
		return m.CommunicationLog
	}
	t, ok := m.Selected()
	if !ok {
		return nil
	}
	return m.TunnelLogs[t.TunnelID]
}
