package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriVoice/internal/models"
	"github.com/Rorical/RoriVoice/ui/styles"
)

func RenderForm(form models.FormModel) string {
	var b strings.Builder

	title := "RoriVoice · AI voice detection"
	if form.ProfileName != "" {
		title += " · profile " + form.ProfileName
	}
	b.WriteString(styles.TitleStyle().Render(title) + "\n")

	for _, f := range models.FieldOrder {
		focused := f == form.Focus
		label := styles.LabelStyle(focused).Render(f.Label())
		box := styles.InputStyle(form.Width, focused).Render(fieldText(form, f))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, label, box) + "\n")
		if f == models.FieldBase64 {
			b.WriteString(styles.HintStyle().Render(fmt.Sprintf("%d characters", form.Base64Length())) + "\n")
		}
	}

	b.WriteString(styles.ButtonStyle(form.CanSubmit()).Render("Analyze") + "\n")
	return b.String()
}

func fieldText(form models.FormModel, f models.Field) string {
	inner := styles.DefaultWidth - 24
	if form.Width > 0 {
		inner = form.Width - 24
	}
	if inner < 16 {
		inner = 16
	}

	v := form.Value(f)
	switch f {
	case models.FieldFile:
		if v == "" {
			return placeholder("path to an audio file, enter to load")
		}
	case models.FieldBase64:
		if strings.TrimSpace(v) == "" {
			return placeholder("paste Base64 audio (data:audio/...;base64, prefix allowed)")
		}
		return PreviewBase64(strings.TrimSpace(v), inner)
	case models.FieldLanguage:
		return "◀ " + v + " ▶"
	case models.FieldEndpoint:
		if strings.TrimSpace(v) == "" {
			return placeholder(form.DefaultEndpoint)
		}
	case models.FieldAPIKey:
		if v == "" {
			return placeholder("optional")
		}
		return strings.Repeat("*", len([]rune(v)))
	}
	return Truncate(v, inner)
}

func placeholder(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(s)
}

// PreviewBase64 shortens a long payload to its head and tail.
func PreviewBase64(s string, max int) string {
	if max < 5 {
		max = 5
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	half := (max - 1) / 2
	return string(r[:half]) + "…" + string(r[len(r)-half:])
}

// Truncate cuts s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 1 || len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
