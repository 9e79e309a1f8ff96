package update

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriVoice/internal/detection"
	"github.com/Rorical/RoriVoice/internal/eventbus"
	"github.com/Rorical/RoriVoice/internal/models"
)

func newForm() *models.FormModel {
	return &models.FormModel{
		Language:        "English",
		AudioFormat:     "mp3",
		DefaultEndpoint: "http://localhost:8000/api/voice-detection",
		Focus:           models.FieldBase64,
		MinBase64Length: detection.DefaultMinBase64Length,
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func pending(eb *eventbus.EventBus) int {
	return len(eb.UIToCore())
}

func TestShortPayloadIsRejectedWithoutSending(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	form := newForm()

	HandleKeyMsgWithEventBus(form, key(strings.Repeat("A", 49)), eb, detection.DefaultPolicy())
	if form.CanSubmit() {
		t.Error("Analyze should be disabled below the minimum")
	}
	HandleKeyMsgWithEventBus(form, key("enter"), eb, detection.DefaultPolicy())

	if pending(eb) != 0 {
		t.Fatalf("request sent for a short payload")
	}
	if form.ErrorBanner != detection.MsgTooShort {
		t.Errorf("banner = %q", form.ErrorBanner)
	}
	if form.Loading {
		t.Error("loading shown for a rejected submit")
	}
}

func TestSubmitSendsStrippedRequest(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	form := newForm()
	form.ErrorBanner = "old error"
	form.Result = &detection.Result{Classification: detection.ClassificationHuman}

	suffix := strings.Repeat("SUQzBAAAAAAA", 6)
	HandleKeyMsgWithEventBus(form, key("data:audio/mpeg;base64,"+suffix), eb, detection.DefaultPolicy())
	if !form.CanSubmit() {
		t.Fatal("Analyze should be enabled")
	}
	HandleKeyMsgWithEventBus(form, key("enter"), eb, detection.DefaultPolicy())

	if pending(eb) != 1 {
		t.Fatalf("pending = %d", pending(eb))
	}
	ev := (<-eb.UIToCore()).(eventbus.AnalyzeRequestEvent)
	if ev.Request.AudioBase64 != suffix {
		t.Errorf("AudioBase64 = %q", ev.Request.AudioBase64)
	}
	if ev.Request.Endpoint != form.DefaultEndpoint {
		t.Errorf("blank endpoint should fall back to default, got %q", ev.Request.Endpoint)
	}
	if !form.Loading || form.ErrorBanner != "" || form.Result != nil {
		t.Errorf("form after submit = %+v", form)
	}
}

func TestSubmitWhileLoadingIsIgnored(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	form := newForm()
	form.Base64 = strings.Repeat("A", 60)

	HandleKeyMsgWithEventBus(form, key("enter"), eb, detection.DefaultPolicy())
	HandleKeyMsgWithEventBus(form, key("enter"), eb, detection.DefaultPolicy())

	if pending(eb) != 1 {
		t.Errorf("pending = %d, want 1", pending(eb))
	}
	if form.Status != "Analysis already running" {
		t.Errorf("status = %q", form.Status)
	}
}

func TestFocusAndEditing(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	form := newForm()
	policy := detection.DefaultPolicy()

	HandleKeyMsgWithEventBus(form, key("tab"), eb, policy)
	if form.Focus != models.FieldLanguage {
		t.Fatalf("focus = %v", form.Focus)
	}
	HandleKeyMsgWithEventBus(form, key("x"), eb, policy)
	HandleKeyMsgWithEventBus(form, key("backspace"), eb, policy)
	if form.Language != "English" {
		t.Errorf("language edited as text: %q", form.Language)
	}
	HandleKeyMsgWithEventBus(form, key("right"), eb, policy)
	if form.Language != "Hindi" {
		t.Errorf("language = %q", form.Language)
	}
	HandleKeyMsgWithEventBus(form, key("left"), eb, policy)
	HandleKeyMsgWithEventBus(form, key("left"), eb, policy)
	HandleKeyMsgWithEventBus(form, key("left"), eb, policy)
	if form.Language != "Telugu" {
		t.Errorf("language should wrap, got %q", form.Language)
	}

	HandleKeyMsgWithEventBus(form, key("tab"), eb, policy)
	HandleKeyMsgWithEventBus(form, key("tab"), eb, policy)
	HandleKeyMsgWithEventBus(form, key("tab"), eb, policy)
	if form.Focus != models.FieldAPIKey {
		t.Fatalf("focus = %v", form.Focus)
	}
	HandleKeyMsgWithEventBus(form, key("sk_test"), eb, policy)
	HandleKeyMsgWithEventBus(form, key("backspace"), eb, policy)
	if form.APIKey != "sk_tes" {
		t.Errorf("api key = %q", form.APIKey)
	}
	HandleKeyMsgWithEventBus(form, key("ctrl+u"), eb, policy)
	if form.APIKey != "" {
		t.Errorf("api key not cleared: %q", form.APIKey)
	}

	HandleKeyMsgWithEventBus(form, key("tab"), eb, policy)
	if form.Focus != models.FieldFile {
		t.Errorf("focus should wrap to the first field, got %v", form.Focus)
	}
	HandleKeyMsgWithEventBus(form, key("shift+tab"), eb, policy)
	if form.Focus != models.FieldAPIKey {
		t.Errorf("focus = %v", form.Focus)
	}

	if cmd := HandleKeyMsgWithEventBus(form, key("esc"), eb, policy); cmd == nil {
		t.Error("esc should quit")
	}
}

func TestCoreEventsDriveLoadingAndResult(t *testing.T) {
	form := newForm()
	form.Loading = true

	HandleCoreEvent(form, CoreEventMsg{Event: eventbus.StateUpdateEvent{IsProcessing: true, Generation: 1}})
	if !form.Loading || form.Status != "Analyzing" {
		t.Errorf("form = %+v", form)
	}

	res := &detection.Result{Classification: detection.ClassificationAI, ConfidenceScore: 0.873}
	HandleCoreEvent(form, CoreEventMsg{Event: eventbus.StateUpdateEvent{Generation: 1, Result: res}})
	if form.Loading || form.Result != res || form.ErrorBanner != "" {
		t.Errorf("form = %+v", form)
	}

	HandleCoreEvent(form, CoreEventMsg{Event: eventbus.StateUpdateEvent{IsProcessing: true, Generation: 2}})
	HandleCoreEvent(form, CoreEventMsg{Event: eventbus.StateUpdateEvent{Generation: 2, Error: &detection.Error{Kind: detection.KindServer, Message: "bad audio"}}})
	if form.Loading || form.Result != nil || form.ErrorBanner != "bad audio" {
		t.Errorf("form = %+v", form)
	}

	// A late event from generation 1 must not overwrite generation 2.
	HandleCoreEvent(form, CoreEventMsg{Event: eventbus.StateUpdateEvent{Generation: 1, Result: res}})
	if form.Result != nil || form.ErrorBanner != "bad audio" {
		t.Errorf("stale event applied: %+v", form)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVEfmt "), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	eb := eventbus.NewEventBus()
	defer eb.Close()
	form := newForm()
	form.Focus = models.FieldFile
	form.FilePath = path

	cmd := HandleKeyMsgWithEventBus(form, key("enter"), eb, detection.DefaultPolicy())
	if cmd == nil {
		t.Fatal("enter on the file field should load the file")
	}
	if pending(eb) != 0 {
		t.Error("loading a file must not submit")
	}

	msg, ok := cmd().(FileLoadedMsg)
	if !ok || msg.Err != nil {
		t.Fatalf("msg = %+v", msg)
	}
	HandleUpdateWithEventBus(form, msg, eb, detection.DefaultPolicy())
	if form.Base64 != "UklGRi4uLi5XQVZFZm10IA==" || form.AudioFormat != "wav" {
		t.Errorf("form = %+v", form)
	}

	HandleFileLoadedMsg(form, FileLoadedMsg{Path: "missing.mp3", Err: errors.New("stat audio: no such file")})
	if !strings.HasPrefix(form.ErrorBanner, "Could not load audio file") {
		t.Errorf("banner = %q", form.ErrorBanner)
	}
	if form.Base64 == "" {
		t.Error("failed load should keep the previous payload")
	}
}

func TestTickAnimatesOnlyWhileLoading(t *testing.T) {
	form := newForm()
	HandleTickMsg(form)
	if form.LoadingDots != 0 {
		t.Errorf("dots = %d", form.LoadingDots)
	}
	form.Loading = true
	for i := 0; i < 5; i++ {
		HandleTickMsg(form)
	}
	if form.LoadingDots != 1 {
		t.Errorf("dots = %d", form.LoadingDots)
	}
}
