package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriVoice/internal/detection"
	"github.com/Rorical/RoriVoice/internal/eventbus"
	"github.com/Rorical/RoriVoice/internal/models"
)

// HandleKeyMsgWithEventBus handles keyboard input using event bus
func HandleKeyMsgWithEventBus(form *models.FormModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus, policy detection.Policy) tea.Cmd {
	switch keyMsg.String() {
	case "ctrl+c", "esc":
		return tea.Quit
	case "tab", "down":
		moveFocus(form, 1)
	case "shift+tab", "up":
		moveFocus(form, -1)
	case "left":
		if form.Focus == models.FieldLanguage {
			cycleLanguage(form, -1)
		}
	case "right":
		if form.Focus == models.FieldLanguage {
			cycleLanguage(form, 1)
		}
	case "ctrl+u":
		if form.Focus != models.FieldLanguage {
			form.SetValue(form.Focus, "")
		}
	case "enter":
		if form.Focus == models.FieldFile {
			path := strings.TrimSpace(form.FilePath)
			if path == "" {
				form.ErrorBanner = "Enter the path of an audio file"
				return nil
			}
			form.Status = "Encoding " + path
			return LoadFileCmd(path)
		}
		return Submit(form, eb, policy)
	case "backspace":
		if form.Focus == models.FieldLanguage {
			return nil
		}
		v := []rune(form.Value(form.Focus))
		if len(v) > 0 {
			form.SetValue(form.Focus, string(v[:len(v)-1]))
		}
	default:
		if form.Focus == models.FieldLanguage {
			return nil
		}
		switch keyMsg.Type {
		case tea.KeyRunes:
			// Pastes arrive as a single KeyRunes message.
			form.SetValue(form.Focus, form.Value(form.Focus)+string(keyMsg.Runes))
		case tea.KeySpace:
			form.SetValue(form.Focus, form.Value(form.Focus)+" ")
		}
	}
	return nil
}

// Submit validates the form and hands the request to the core. Nothing
// is sent while an analysis is in flight or when validation fails.
func Submit(form *models.FormModel, eb *eventbus.EventBus, policy detection.Policy) tea.Cmd {
	if form.Loading {
		form.Status = "Analysis already running"
		return nil
	}

	req, err := detection.NewRequest(form.Input(), policy)
	if err != nil {
		form.ErrorBanner = detection.UserMessage(err)
		return nil
	}

	if err := eb.SendToCore(eventbus.AnalyzeRequestEvent{Request: req}); err != nil {
		form.ErrorBanner = "Error sending request: " + err.Error()
		return nil
	}

	// Loading is set locally so a second enter is refused before the
	// core's first state update arrives.
	form.ErrorBanner = ""
	form.Result = nil
	form.Loading = true
	form.Status = "Analyzing"
	return nil
}

func moveFocus(form *models.FormModel, delta int) {
	n := len(models.FieldOrder)
	idx := 0
	for i, f := range models.FieldOrder {
		if f == form.Focus {
			idx = i
			break
		}
	}
	form.Focus = models.FieldOrder[((idx+delta)%n+n)%n]
}

func cycleLanguage(form *models.FormModel, delta int) {
	langs := detection.SupportedLanguages
	idx := -1
	for i, l := range langs {
		if strings.EqualFold(l, form.Language) {
			idx = i
			break
		}
	}
	if idx < 0 {
		if delta > 0 {
			idx = -1
		} else {
			idx = 0
		}
	}
	n := len(langs)
	form.Language = langs[((idx+delta)%n+n)%n]
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(form *models.FormModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		if event.Generation < form.Generation {
			return nil
		}
		form.Generation = event.Generation
		form.Loading = event.IsProcessing

		switch {
		case event.IsProcessing:
			form.Status = "Analyzing"
		case event.Error != nil:
			form.ErrorBanner = detection.UserMessage(event.Error)
			form.Result = nil
			form.Status = "Failed"
		case event.Result != nil:
			form.ErrorBanner = ""
			form.Result = event.Result
			form.Status = "Done"
		default:
			form.Status = "Ready"
		}
	}

	return nil
}

// FileLoadedMsg carries an encoded audio file back to the form.
type FileLoadedMsg struct {
	Path   string
	Base64 string
	Format string
	Err    error
}

// LoadFileCmd encodes the file off the UI loop.
func LoadFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		b64, err := detection.EncodeFile(path)
		return FileLoadedMsg{
			Path:   path,
			Base64: b64,
			Format: detection.FormatFromPath(path),
			Err:    err,
		}
	}
}

func HandleFileLoadedMsg(form *models.FormModel, msg FileLoadedMsg) {
	if msg.Err != nil {
		form.ErrorBanner = "Could not load audio file: " + msg.Err.Error()
		form.Status = "Ready"
		return
	}
	form.FilePath = msg.Path
	form.Base64 = msg.Base64
	form.AudioFormat = msg.Format
	form.ErrorBanner = ""
	form.Status = fmt.Sprintf("Loaded %s (%d characters)", msg.Path, len(msg.Base64))
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func HandleWindowSizeMsg(form *models.FormModel, sizeMsg tea.WindowSizeMsg) {
	form.Width = sizeMsg.Width
	form.Height = sizeMsg.Height
}

func HandleTickMsg(form *models.FormModel) tea.Cmd {
	// Only handle UI animations - loading dots
	if form.Loading {
		form.LoadingDots = (form.LoadingDots + 1) % 4
	}
	return TickCmd()
}
