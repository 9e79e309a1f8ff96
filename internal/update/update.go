package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriVoice/internal/detection"
	"github.com/Rorical/RoriVoice/internal/eventbus"
	"github.com/Rorical/RoriVoice/internal/models"
)

func HandleUpdateWithEventBus(form *models.FormModel, msg tea.Msg, eb *eventbus.EventBus, policy detection.Policy) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return HandleKeyMsgWithEventBus(form, msg, eb, policy)
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(form, msg)
		return nil
	case TickMsg:
		return HandleTickMsg(form)
	case CoreEventMsg:
		return HandleCoreEvent(form, msg)
	case FileLoadedMsg:
		HandleFileLoadedMsg(form, msg)
		return nil
	}
	return nil
}
