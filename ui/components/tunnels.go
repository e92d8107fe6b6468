package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/Rorical/tunneldesk/internal/metrics"
	"github.com/Rorical/tunneldesk/internal/models"
	"github.com/Rorical/tunneldesk/ui/styles"
)

const shortIDLen = 8

func phaseIcon(t models.Tunnel) string {
	switch t.Phase {
	case models.PhaseStarted:
		return "●"
	case models.PhaseFailed:
		return "✗"
	default:
		return "○"
	}
}

// ShortID trims a tunnel id for display
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// tunnelSummary is the one-line description after the id
func tunnelSummary(t models.Tunnel, now time.Time) string {
	switch {
	case t.Phase == models.PhaseFailed:
		return t.ErrorMsg
	case t.Loading && t.LoadingMsg != "":
		return t.LoadingMsg + "…"
	case len(t.SiteAddrs) > 0:
		summary := t.SiteAddrs[0]
		if !t.StartTime.IsZero() {
			summary += "  up since " + metrics.Ago(t.StartTime, now)
		}
		return summary
	case t.LocalAddr != "":
		return t.LocalAddr
	default:
		return t.Phase.String()
	}
}

// RenderTunnelList draws one row per tunnel with the cursor on selected
func RenderTunnelList(tunnels []models.Tunnel, selected int, width int, now time.Time) string {
	if len(tunnels) == 0 {
		return styles.MutedStyle().Render("  No tunnels. Type `http <port>` or `dir <path>` to start one.")
	}

	var b strings.Builder
	for i, t := range tunnels {
		cursor := "  "
		if i == selected {
			cursor = "> "
		}
		kind := fmt.Sprintf("%-9s", t.Type)
		row := fmt.Sprintf("%s%s %s %-8s %s", cursor, phaseIcon(t), kind, ShortID(t.TunnelID), tunnelSummary(t, now))
		if width > 0 {
			row = runewidth.Truncate(row, width, "…")
		}

		if i == selected {
			row = styles.SelectedStyle().Render(row)
		} else {
			row = styles.PhaseStyle(t.Phase).Render(row)
		}
		b.WriteString(row)
		if i < len(tunnels)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderTunnelDetails lists everything known about t
func RenderTunnelDetails(t models.Tunnel, width int) string {
	lines := []string{
		fmt.Sprintf("id:      %s", t.TunnelID),
		fmt.Sprintf("type:    %s (%s)", t.Type, t.Phase),
	}
	if t.SiteID != "" {
		lines = append(lines, fmt.Sprintf("site:    %s", t.SiteID))
	}
	if t.Domain != "" {
		lines = append(lines, fmt.Sprintf("name:    %s", t.Domain))
	}
	if t.LocalAddr != "" {
		lines = append(lines, fmt.Sprintf("local:   %s", t.LocalAddr))
	}
	for _, addr := range t.SiteAddrs {
		lines = append(lines, fmt.Sprintf("public:  %s", addr))
	}
	if t.UsingBasicAuth {
		lines = append(lines, fmt.Sprintf("auth:    %s / %s", t.BasicAuthUsername, strings.Repeat("*", len(t.BasicAuthPassword))))
	}
	var flags []string
	if t.ProxyErrorDisabled {
		flags = append(flags, "no error page")
	}
	if t.OldCiphersDisabled {
		flags = append(flags, "no old ciphers")
	}
	if len(flags) > 0 {
		lines = append(lines, "flags:   "+strings.Join(flags, ", "))
	}
	if t.Error {
		lines = append(lines, styles.ErrorStyle().Render("error:   "+t.ErrorMsg))
	}
	return styles.PanelStyle(width).Render(strings.Join(lines, "\n"))
}
