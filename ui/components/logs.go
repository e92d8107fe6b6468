package components

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Rorical/tunneldesk/internal/models"
	"github.com/Rorical/tunneldesk/ui/styles"
)

const logTimeLayout = "15:04:05"

// RenderLogs renders one line per entry, oldest first
func RenderLogs(entries []models.LogEntry, width int) string {
	if len(entries) == 0 {
		return styles.MutedStyle().Render("no log entries")
	}

	var b strings.Builder
	for i, e := range entries {
		line := e.Timestamp.Format(logTimeLayout) + " " + strings.ReplaceAll(e.Message, "\n", " ")
		if width > 0 {
			line = runewidth.Truncate(line, width, "…")
		}
		b.WriteString(styles.LogClassStyle(e.Class).Render(line))
		if i < len(entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
