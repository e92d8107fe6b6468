package components

import (
	"github.com/mattn/go-runewidth"

	"github.com/Rorical/tunneldesk/ui/styles"
)

// RenderStatus draws the bottom bar. spinnerView is shown while busy.
func RenderStatus(status string, isError bool, busy bool, spinnerView string, width int) string {
	statusStyle := styles.StatusStyle(width)
	if isError {
		statusStyle = styles.StatusErrorStyle(width)
	}

	statusContent := status
	if busy {
		statusContent = spinnerView + " " + statusContent
	}
	if width > 2 {
		statusContent = runewidth.Truncate(statusContent, width-2, "…")
	}

	return statusStyle.Render(statusContent)
}
