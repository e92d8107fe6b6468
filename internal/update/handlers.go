package update

import (
	"fmt"
	"maps"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/tunneldesk/internal/commands"
	"github.com/Rorical/tunneldesk/internal/eventbus"
	"github.com/Rorical/tunneldesk/internal/models"
	"github.com/Rorical/tunneldesk/internal/store"
)

// SubmitMsg carries a command line the user pressed enter on
type SubmitMsg struct {
	Line string
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// CoreClosedMsg is delivered once the core side of the bus is gone
type CoreClosedMsg struct{}

// ListenForCoreEvents waits for the next notice or snapshot from core
func ListenForCoreEvents(eb *eventbus.EventBus) tea.Cmd {
	return func() tea.Msg {
		select {
		case event, ok := <-eb.CoreToUI():
			if !ok {
				return CoreClosedMsg{}
			}
			return CoreEventMsg{Event: event}
		case event, ok := <-eb.StateUpdates():
			if !ok {
				return CoreClosedMsg{}
			}
			return CoreEventMsg{Event: event}
		}
	}
}

// HandleKeyMsg handles navigation keys. Text editing belongs to the input widget.
func HandleKeyMsg(appModel *models.AppModel, keyMsg tea.KeyMsg) tea.Cmd {
	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "up":
		if appModel.SelectedTunnel > 0 {
			appModel.SelectedTunnel--
		}
	case "down":
		if appModel.SelectedTunnel < len(appModel.Tunnels)-1 {
			appModel.SelectedTunnel++
		}
	case "tab":
		appModel.ShowCommLog = !appModel.ShowCommLog
	case "esc":
		appModel.ShowHelp = false
	}
	return nil
}

// HandleCommand parses line and forwards the resulting event to core
func HandleCommand(appModel *models.AppModel, line string, registry *commands.Registry, eb *eventbus.EventBus) tea.Cmd {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if line == "quit" || line == "exit" {
		return tea.Quit
	}

	event, err := registry.Parse(expandSelection(appModel, line))
	if err != nil {
		setStatus(appModel, err.Error(), true)
		return nil
	}
	if _, ok := event.(commands.HelpEvent); ok {
		appModel.ShowHelp = !appModel.ShowHelp
		return nil
	}

	// Send event to core via event bus with error handling
	if err := eb.SendToCore(event); err != nil {
		setStatus(appModel, "Error sending command: "+err.Error(), true)
		return nil
	}
	setStatus(appModel, describe(event), false)
	return nil
}

// expandSelection replaces a lone "." argument with the selected tunnel's id
func expandSelection(appModel *models.AppModel, line string) string {
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[1] != "." {
		return line
	}
	t, ok := appModel.Selected()
	if !ok {
		return line
	}
	return fields[0] + " " + t.TunnelID
}

func describe(event eventbus.UIEvent) string {
	switch e := event.(type) {
	case eventbus.StartTunnelEvent:
		return fmt.Sprintf("Starting %s tunnel", e.Kind)
	case eventbus.StopTunnelEvent:
		return "Stopping " + e.TunnelID
	case eventbus.DeleteTunnelEvent:
		return "Deleted " + e.TunnelID
	case eventbus.LoginEvent:
		return "Requesting login"
	case eventbus.LogoutEvent:
		return "Logging out"
	case eventbus.OpenInBrowserEvent:
		return "Opening " + e.Target
	case eventbus.CopyAddressEvent:
		return "Copying address of " + e.TunnelID
	}
	return "Ready"
}

func setStatus(appModel *models.AppModel, status string, isError bool) {
	appModel.Status = status
	appModel.StatusError = isError
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		// Snapshots can be queued behind newer ones
		if event.Snapshot.Revision < appModel.Revision {
			return nil
		}
		ApplySnapshot(appModel, event.Snapshot)
	case eventbus.NoticeEvent:
		setStatus(appModel, event.Message, event.Error != nil)
	}
	return nil
}

// ApplySnapshot mirrors snap into the UI model and keeps the cursor on the
// same tunnel when it still exists
func ApplySnapshot(appModel *models.AppModel, snap store.Snapshot) {
	selectedID := ""
	if t, ok := appModel.Selected(); ok {
		selectedID = t.TunnelID
	}

	appModel.Revision = snap.Revision
	appModel.Tunnels = snap.Tunnels.Tunnels
	appModel.TunnelLogs = maps.Clone(snap.Logs.TunnelLogs)
	appModel.CommunicationLog = snap.Logs.CommunicationLogs

	session := snap.Session
	appModel.Connected = session.Connected
	appModel.ConnectionError = session.LastConnectionError
	appModel.LoggedIn = session.LoggedIn
	appModel.User = session.User
	appModel.AuthInstructions = session.AuthInstructions
	appModel.AuthError = session.AuthError
	appModel.Config = session.Config
	appModel.Synced = session.Synced

	appModel.SelectedTunnel = 0
	for i, t := range appModel.Tunnels {
		if t.TunnelID == selectedID {
			appModel.SelectedTunnel = i
			break
		}
	}
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
}

// HandleTickMsg only keeps the clock running; uptimes are computed at render
func HandleTickMsg(appModel *models.AppModel) tea.Cmd {
	return TickCmd()
}
