package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriVoice/internal/detection"
	"github.com/Rorical/RoriVoice/ui/styles"
)

const meterWidth = 30

func RenderResult(res detection.Result, width int) string {
	ai := res.IsAIGenerated()
	icon := "👤"
	if ai {
		icon = "🤖"
	}
	pct := res.ConfidencePercent()

	rows := []string{
		styles.BadgeStyle(ai).Render(icon + " " + res.Label()),
		"",
		row("Confidence", fmt.Sprintf("%d%%", pct)+"  "+RenderMeter(pct, meterWidth, ai)),
		row("Language", orDash(res.Language)),
		row("Status", orDash(res.Status)),
		row("Explanation", orDash(res.Explanation)),
	}
	return styles.PanelStyle(width).Render(strings.Join(rows, "\n"))
}

// RenderMeter draws pct (0..100) as a bar of the given width.
func RenderMeter(pct, width int, ai bool) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := (pct*width + 50) / 100
	return styles.MeterFillStyle(ai).Render(strings.Repeat("█", filled)) +
		styles.MeterTrackStyle().Render(strings.Repeat("░", width-filled))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, styles.LabelStyle(false).Render(label), value)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
