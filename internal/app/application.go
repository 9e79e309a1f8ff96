package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/Rorical/RoriVoice/internal/config"
	"github.com/Rorical/RoriVoice/internal/core"
	"github.com/Rorical/RoriVoice/internal/detection"
	"github.com/Rorical/RoriVoice/internal/dispatcher"
	"github.com/Rorical/RoriVoice/internal/eventbus"
	"github.com/Rorical/RoriVoice/internal/models"
)

// Options are per-run settings that do not belong in the config file.
type Options struct {
	// FilePath is loaded into the form on start when set.
	FilePath string
}

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	log        zerolog.Logger
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.AnalyzerService
	model      *AppModel
}

type AppModel struct {
	form       models.FormModel
	dispatcher *dispatcher.EventDispatcher
	policy     detection.Policy
	initCmds   []tea.Cmd
}

func NewApplication(cfg *config.Config, log zerolog.Logger, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("new application: nil config")
	}
	profile := cfg.Current()
	policy := cfg.DetectionPolicy()

	client := detection.NewClient(detection.Config{
		Timeout:              profile.Timeout.ToDuration(),
		RequireSuccessStatus: policy.RequireSuccessStatus,
	}, log.With().Str("component", "detection").Logger())

	eb := eventbus.NewEventBus()
	disp := dispatcher.NewEventDispatcher(eb)
	service := core.NewAnalyzerService(client, eb, log.With().Str("component", "core").Logger())

	model := &AppModel{
		form:       createInitialForm(cfg, profile, policy),
		dispatcher: disp,
		policy:     policy,
	}
	if opts.FilePath != "" {
		model.form.FilePath = opts.FilePath
		model.initCmds = append(model.initCmds, loadFile(opts.FilePath))
	}

	return &Application{
		config:     cfg,
		log:        log,
		eventBus:   eb,
		dispatcher: disp,
		service:    service,
		model:      model,
	}, nil
}

func (app *Application) Start() error {
	app.service.Start()
	app.log.Info().
		Str("profile", app.config.ActiveProfile).
		Str("endpoint", app.model.form.DefaultEndpoint).
		Msg("analyzer started")

	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.dispatcher.Stop()
	app.eventBus.Close()
	app.log.Info().Msg("analyzer stopped")
}

func createInitialForm(cfg *config.Config, profile config.Profile, policy detection.Policy) models.FormModel {
	status := "Ready"
	if !cfg.IsValid() {
		status = "Profile incomplete: run 'rorivoice profile' to set endpoint and API key"
	}
	return models.FormModel{
		Language:        profile.Language,
		AudioFormat:     profile.AudioFormat,
		APIKey:          profile.APIKey,
		DefaultEndpoint: profile.Endpoint,
		Focus:           models.FieldBase64,
		Status:          status,
		MinBase64Length: policy.MinBase64Length,
		ProfileName:     cfg.ActiveProfile,
	}
}
