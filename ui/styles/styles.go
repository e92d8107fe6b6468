package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/tunneldesk/internal/models"
)

const (
	colorAccent  = lipgloss.Color("62")
	colorMuted   = lipgloss.Color("241")
	colorBarBg   = lipgloss.Color("235")
	colorInfo    = lipgloss.Color("39")
	colorSuccess = lipgloss.Color("42")
	colorWarning = lipgloss.Color("214")
	colorDanger  = lipgloss.Color("196")
)

func InputStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1).
		Width(max(width-4, 0))
}

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(colorMuted).
		Background(colorBarBg).
		Padding(0, 1).
		Width(width)
}

func StatusErrorStyle(width int) lipgloss.Style {
	return StatusStyle(width).Foreground(colorDanger)
}

func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true).
		Padding(0, 1)
}

// PanelStyle frames a section of the screen
func PanelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(colorAccent).
		Padding(0, 1).
		MarginLeft(1).
		Width(max(width-3, 0))
}

func SelectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(colorAccent)
}

func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}

func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorDanger)
}

func ConnectedStyle(connected bool) lipgloss.Style {
	if connected {
		return lipgloss.NewStyle().Foreground(colorSuccess)
	}
	return lipgloss.NewStyle().Foreground(colorDanger)
}

func PhaseStyle(p models.TunnelPhase) lipgloss.Style {
	switch p {
	case models.PhaseStarted:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case models.PhaseFailed:
		return lipgloss.NewStyle().Foreground(colorDanger)
	default:
		return lipgloss.NewStyle().Foreground(colorWarning)
	}
}

func LogClassStyle(c models.LogClass) lipgloss.Style {
	switch c {
	case models.ClassSuccess:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case models.ClassWarning:
		return lipgloss.NewStyle().Foreground(colorWarning)
	case models.ClassDanger:
		return lipgloss.NewStyle().Foreground(colorDanger)
	default:
		return lipgloss.NewStyle().Foreground(colorInfo)
	}
}
