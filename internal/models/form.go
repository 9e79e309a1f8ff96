package models

import (
	"strings"

	"github.com/Rorical/RoriVoice/internal/detection"
)

// Field identifies one input control of the form.
type Field int

const (
	FieldFile Field = iota
	FieldBase64
	FieldLanguage
	FieldFormat
	FieldEndpoint
	FieldAPIKey
)

// FieldOrder is the tab order.
var FieldOrder = []Field{FieldFile, FieldBase64, FieldLanguage, FieldFormat, FieldEndpoint, FieldAPIKey}

func (f Field) Label() string {
	switch f {
	case FieldFile:
		return "Audio file"
	case FieldBase64:
		return "Base64 audio"
	case FieldLanguage:
		return "Language"
	case FieldFormat:
		return "Audio format"
	case FieldEndpoint:
		return "Endpoint"
	case FieldAPIKey:
		return "API key"
	}
	return ""
}

// FormModel represents the form state - only local UI concerns
type FormModel struct {
	FilePath        string
	Base64          string
	Language        string
	AudioFormat     string
	Endpoint        string
	APIKey          string
	DefaultEndpoint string // used when the endpoint field is left blank

	Focus       Field
	Status      string            // Status bar text
	Loading     bool              // An analysis is in flight
	LoadingDots int               // Animation counter for loading dots
	ErrorBanner string            // Empty when no error is shown
	Result      *detection.Result // Nil hides the result panel
	Generation  uint64            // Latest analysis generation seen from the core

	MinBase64Length int
	ProfileName     string
	Width           int // Terminal width
	Height          int // Terminal height
}

func (m *FormModel) Value(f Field) string {
	switch f {
	case FieldFile:
		return m.FilePath
	case FieldBase64:
		return m.Base64
	case FieldLanguage:
		return m.Language
	case FieldFormat:
		return m.AudioFormat
	case FieldEndpoint:
		return m.Endpoint
	case FieldAPIKey:
		return m.APIKey
	}
	return ""
}

func (m *FormModel) SetValue(f Field, v string) {
	switch f {
	case FieldFile:
		m.FilePath = v
	case FieldBase64:
		m.Base64 = v
	case FieldLanguage:
		m.Language = v
	case FieldFormat:
		m.AudioFormat = v
	case FieldEndpoint:
		m.Endpoint = v
	case FieldAPIKey:
		m.APIKey = v
	}
}

// Base64Length is the length the character counter shows.
func (m *FormModel) Base64Length() int {
	return len(strings.TrimSpace(m.Base64))
}

// CanSubmit mirrors the enabled state of the Analyze control.
func (m *FormModel) CanSubmit() bool {
	return !m.Loading && m.Base64Length() >= m.MinBase64Length
}

// Input snapshots the form for request building.
func (m *FormModel) Input() detection.Input {
	endpoint := strings.TrimSpace(m.Endpoint)
	if endpoint == "" {
		endpoint = m.DefaultEndpoint
	}
	return detection.Input{
		Base64:      m.Base64,
		Language:    m.Language,
		AudioFormat: m.AudioFormat,
		Endpoint:    endpoint,
		APIKey:      m.APIKey,
	}
}
