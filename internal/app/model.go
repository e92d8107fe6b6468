package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/tunneldesk/internal/commands"
	"github.com/Rorical/tunneldesk/internal/eventbus"
	"github.com/Rorical/tunneldesk/internal/models"
	"github.com/Rorical/tunneldesk/internal/update"
	"github.com/Rorical/tunneldesk/ui/components"
	"github.com/Rorical/tunneldesk/ui/styles"
)

// AppModel is the Bubble Tea model: local UI state plus the widgets
type AppModel struct {
	appModel models.AppModel
	eventBus *eventbus.EventBus
	registry *commands.Registry
	now      func() time.Time

	input   textinput.Model
	logView viewport.Model
	spinner spinner.Model
}

func NewAppModel(eb *eventbus.EventBus, registry *commands.Registry) *AppModel {
	input := textinput.New()
	input.Placeholder = "type a command, help for a list"
	input.Prompt = "› "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &AppModel{
		appModel: models.AppModel{
			Status:   "Connecting",
			Width:    80,
			Height:   24,
			ShowHelp: false,
		},
		eventBus: eb,
		registry: registry,
		now:      time.Now,
		input:    input,
		logView:  viewport.New(80, 8),
		spinner:  sp,
	}
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		update.TickCmd(),
		update.ListenForCoreEvents(m.eventBus),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case update.CoreEventMsg:
		// Handle core events and continue listening
		cmd := update.HandleCoreEvent(&m.appModel, msg)
		m.refreshLogs()
		return m, tea.Batch(cmd, update.ListenForCoreEvents(m.eventBus))

	case update.CoreClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		update.HandleWindowSizeMsg(&m.appModel, msg)
		m.input.Width = max(msg.Width-8, 10)
		m.logView.Width = msg.Width
		m.refreshLogs()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			line := m.input.Value()
			m.input.Reset()
			m.appModel.Input = ""
			cmd := update.HandleUpdateWithEventBus(&m.appModel, update.SubmitMsg{Line: line}, m.eventBus, m.registry)
			m.refreshLogs()
			return m, cmd
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.logView, cmd = m.logView.Update(msg)
			return m, cmd
		case "ctrl+c", "up", "down", "tab", "esc":
			cmd := update.HandleKeyMsg(&m.appModel, msg)
			m.refreshLogs()
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.appModel.Input = m.input.Value()
		return m, cmd
	}

	cmd := update.HandleUpdateWithEventBus(&m.appModel, msg, m.eventBus, m.registry)
	return m, cmd
}

// refreshLogs sizes the log viewport to the space left and reloads it,
// following the tail unless the user scrolled up
func (m *AppModel) refreshLogs() {
	atBottom := m.logView.AtBottom()
	// Input box is three lines, status bar one
	m.logView.Height = max(m.appModel.Height-lipgloss.Height(m.chrome())-3, 3)
	m.logView.SetContent(components.RenderLogs(m.appModel.VisibleLogs(), m.appModel.Width))
	if atBottom {
		m.logView.GotoBottom()
	}
}

// chrome renders everything except the log viewport
func (m *AppModel) chrome() string {
	var b strings.Builder
	am := &m.appModel

	b.WriteString(components.RenderHeader(am))
	b.WriteString("\n")
	b.WriteString(components.RenderSession(am, am.Width))
	b.WriteString("\n\n")
	b.WriteString(components.RenderTunnelList(am.Tunnels, am.SelectedTunnel, am.Width, m.now()))
	b.WriteString("\n")
	if t, ok := am.Selected(); ok {
		b.WriteString(components.RenderTunnelDetails(t, am.Width))
		b.WriteString("\n")
	}
	if am.ShowHelp {
		b.WriteString(components.RenderHelp(m.registry.Help(), am.Width))
		b.WriteString("\n")
	}

	title := "Tunnel log"
	if am.ShowCommLog {
		title = "Communication log"
	}
	b.WriteString(styles.TitleStyle().Render(title))
	b.WriteString("\n")
	return b.String()
}

func (m *AppModel) View() string {
	var b strings.Builder
	am := &m.appModel

	b.WriteString(m.chrome())
	b.WriteString(m.logView.View())
	b.WriteString("\n")
	b.WriteString(components.RenderInput(m.input.View(), am.Width))
	b.WriteString("\n")
	b.WriteString(components.RenderStatus(am.Status, am.StatusError, am.Busy(), m.spinner.View(), am.Width))

	return b.String()
}
