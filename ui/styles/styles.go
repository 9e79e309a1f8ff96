package styles

import "github.com/charmbracelet/lipgloss"

// DefaultWidth is used before the first window size message arrives.
const DefaultWidth = 80

func clampWidth(width int) int {
	if width <= 0 {
		return DefaultWidth
	}
	return width
}

func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true).
		Padding(0, 1)
}

func LabelStyle(focused bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Width(14).
		Foreground(lipgloss.Color("245"))
	if focused {
		s = s.Foreground(lipgloss.Color("39")).Bold(true)
	}
	return s
}

func InputStyle(width int, focused bool) lipgloss.Style {
	border := lipgloss.Color("238")
	if focused {
		border = lipgloss.Color("62")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(clampWidth(width) - 20)
}

func HintStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginLeft(15)
}

func ButtonStyle(enabled bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Padding(0, 2).
		MarginLeft(15).
		Bold(true)
	if enabled {
		return s.Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
	}
	return s.Foreground(lipgloss.Color("243")).Background(lipgloss.Color("236"))
}

func ErrorBannerStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("231")).
		Background(lipgloss.Color("160")).
		Bold(true).
		Padding(0, 1).
		Width(clampWidth(width))
}

func PanelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(clampWidth(width) - 2)
}

// BadgeStyle colours the verdict: red for synthetic, green for human.
func BadgeStyle(ai bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("231"))
	if ai {
		return s.Background(lipgloss.Color("160"))
	}
	return s.Background(lipgloss.Color("28"))
}

func MeterFillStyle(ai bool) lipgloss.Style {
	if ai {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
}

func MeterTrackStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
}

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(clampWidth(width))
}
