package components

import (
	"strings"

	"github.com/Rorical/RoriVoice/ui/styles"
)

const helpText = "tab/↑↓ move · ←→ language · enter analyze/load · ctrl+u clear · esc quit"

func RenderStatus(status string, loading bool, loadingDots int, width int) string {
	statusStyle := styles.StatusStyle(width)

	statusContent := status
	if loading {
		statusContent += strings.Repeat(".", loadingDots)
	}

	return statusStyle.Render(statusContent)
}

func RenderHelp() string {
	return styles.HintStyle().UnsetMarginLeft().Render(helpText)
}

func RenderError(msg string, width int) string {
	if msg == "" {
		return ""
	}
	return styles.ErrorBannerStyle(width).Render("✖ " + msg)
}
