package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/tunneldesk/internal/commands"
	"github.com/Rorical/tunneldesk/internal/config"
	"github.com/Rorical/tunneldesk/internal/core"
	"github.com/Rorical/tunneldesk/internal/eventbus"
	"github.com/Rorical/tunneldesk/pkg/logging"
)

const subsystem = "app"

// Application manages the complete application lifecycle
type Application struct {
	config   *config.Config
	eventBus *eventbus.EventBus
	service  *core.TunnelService
	model    *AppModel
}

func NewApplication(cfg *config.Config) (*Application, error) {
	// Create event bus
	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		logging.Warn(subsystem, "Event bus: %v", e)
	})

	service, err := core.NewTunnelServiceFromConfig(cfg, eb)
	if err != nil {
		eb.Close()
		return nil, fmt.Errorf("failed to initialize tunnel service: %w", err)
	}

	registry := commands.NewRegistry()
	commands.RegisterBuiltinCommands(registry)

	return &Application{
		config:   cfg,
		eventBus: eb,
		service:  service,
		model:    NewAppModel(eb, registry),
	}, nil
}

func (app *Application) Start() error {
	// Start background services
	app.service.Start()
	logging.Info(subsystem, "Started with profile %s", app.config.ActiveProfile)

	// Run UI
	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.eventBus.Close()
}
