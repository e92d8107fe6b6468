package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/tunneldesk/internal/commands"
	"github.com/Rorical/tunneldesk/internal/eventbus"
	"github.com/Rorical/tunneldesk/internal/models"
)

// HandleUpdateWithEventBus handles everything except the text input and
// the widgets, which the app model owns
func HandleUpdateWithEventBus(appModel *models.AppModel, msg tea.Msg, eb *eventbus.EventBus, registry *commands.Registry) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return HandleKeyMsg(appModel, msg)
	case SubmitMsg:
		return HandleCommand(appModel, msg.Line, registry, eb)
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(appModel, msg)
		return nil
	case TickMsg:
		return HandleTickMsg(appModel)
	case CoreEventMsg:
		return HandleCoreEvent(appModel, msg)
	}
	return nil
}
