package components

import (
	"fmt"
	"strings"

	"github.com/Rorical/tunneldesk/internal/models"
	"github.com/Rorical/tunneldesk/ui/styles"
)

// RenderHeader shows the title, backend version and connection state
func RenderHeader(m *models.AppModel) string {
	title := styles.TitleStyle().Render("tunneldesk")

	conn := "● connected"
	if !m.Connected {
		conn = "○ disconnected"
		if m.ConnectionError != "" {
			conn += ": " + m.ConnectionError
		}
	}
	parts := []string{title, styles.ConnectedStyle(m.Connected).Render(conn)}

	if m.Config.Version != "" {
		parts = append(parts, styles.MutedStyle().Render(fmt.Sprintf("backend %s (%s)", m.Config.Version, m.Config.CommitHash)))
	}
	if m.Config.NewVersionAvailable != "" {
		parts = append(parts, styles.LogClassStyle(models.ClassWarning).Render("update available: "+m.Config.NewVersionAvailable))
	}
	return strings.Join(parts, "  ")
}

// RenderSession shows who is logged in or how to log in
func RenderSession(m *models.AppModel, width int) string {
	var lines []string
	switch {
	case !m.Synced:
		lines = append(lines, "Waiting for backend…")
	case m.LoggedIn:
		lines = append(lines, "Logged in as "+m.User.DisplayName())
	case m.AuthInstructions != nil:
		ai := m.AuthInstructions
		lines = append(lines,
			fmt.Sprintf("Open %s and enter the code %s", ai.VerificationURI, ai.UserCode),
		)
		if ai.VerificationURIComplete != "" {
			lines = append(lines, "or visit "+ai.VerificationURIComplete)
		}
	default:
		lines = append(lines, "Not logged in. Type `login` to start.")
	}
	if m.AuthError != "" {
		lines = append(lines, styles.ErrorStyle().Render("Authentication failed: "+m.AuthError))
	}
	return styles.PanelStyle(width).Render(strings.Join(lines, "\n"))
}

// RenderHelp shows the command reference
func RenderHelp(helpText string, width int) string {
	body := helpText + "\n\n" + styles.MutedStyle().Render("up/down select  tab toggle communication log  pgup/pgdn scroll  esc close help  ctrl+c quit")
	return styles.PanelStyle(width).Render(body)
}
