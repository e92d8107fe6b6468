package components

import (
	"github.com/Rorical/tunneldesk/ui/styles"
)

// RenderInput frames the text input widget's view
func RenderInput(inputView string, width int) string {
	inputStyle := styles.InputStyle(width)
	return inputStyle.Render(inputView)
}
