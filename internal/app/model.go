package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriVoice/internal/update"
	"github.com/Rorical/RoriVoice/ui/components"
)

var loadFile = update.LoadFileCmd

func (m *AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		update.TickCmd(),
		m.dispatcher.ListenForUIEvents(),
	}
	return tea.Batch(append(cmds, m.initCmds...)...)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and continue listening
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.form, coreEvent)
		return m, tea.Batch(cmd, m.dispatcher.ListenForUIEvents())
	}

	eventBus := m.dispatcher.GetEventBus()
	cmd := update.HandleUpdateWithEventBus(&m.form, msg, eventBus, m.policy)

	return m, cmd
}

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(components.RenderForm(m.form))
	if banner := components.RenderError(m.form.ErrorBanner, m.form.Width); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	if m.form.Result != nil {
		b.WriteString(components.RenderResult(*m.form.Result, m.form.Width))
		b.WriteString("\n")
	}
	b.WriteString(components.RenderStatus(m.form.Status, m.form.Loading, m.form.LoadingDots, m.form.Width))
	b.WriteString("\n")
	b.WriteString(components.RenderHelp())

	return b.String()
}
