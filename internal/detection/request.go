package detection

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	DefaultEndpoint        = "https://voice-detection-backend.onrender.com/api/voice-detection"
	DefaultLanguage        = "English"
	DefaultAudioFormat     = "mp3"
	DefaultMinBase64Length = 50
	DefaultMaxBase64Length = 1400000
)

// SupportedLanguages are the languages the detection service accepts.
var SupportedLanguages = []string{"Tamil", "English", "Hindi", "Malayalam", "Telugu"}

var dataURLPrefix = regexp.MustCompile(`^data:audio/[^;]+;base64,`)

// Policy holds the validation thresholds applied before a request is sent.
type Policy struct {
	MinBase64Length      int
	MaxBase64Length      int
	RequireAPIKey        bool
	RequireSuccessStatus bool
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		MinBase64Length:      DefaultMinBase64Length,
		MaxBase64Length:      DefaultMaxBase64Length,
		RequireSuccessStatus: true,
	}
}

// Input is the raw form content, exactly as typed.
type Input struct {
	Base64      string
	Language    string
	AudioFormat string
	Endpoint    string
	APIKey      string
}

// Request is a validated analysis request. It is not modified after
// NewRequest returns it.
type Request struct {
	Language    string
	AudioFormat string
	AudioBase64 string
	Endpoint    string
	APIKey      string
}

// Body is the JSON document posted to the endpoint.
type Body struct {
	Language    string `json:"language"`
	AudioFormat string `json:"audioFormat"`
	AudioBase64 string `json:"audioBase64"`
}

func (r Request) Body() Body {
	return Body{
		Language:    r.Language,
		AudioFormat: r.AudioFormat,
		AudioBase64: r.AudioBase64,
	}
}

// StripDataURLPrefix removes a leading data:audio/<subtype>;base64, tag.
func StripDataURLPrefix(s string) string {
	return dataURLPrefix.ReplaceAllString(s, "")
}

// NewRequest validates in and builds the request that would be sent.
// Every error it returns has KindValidation.
func NewRequest(in Input, policy Policy) (Request, error) {
	payload := strings.TrimSpace(in.Base64)
	if payload == "" {
		return Request{}, newError(KindValidation, MsgEmpty, nil)
	}
	if len(payload) < policy.MinBase64Length {
		return Request{}, newError(KindValidation, MsgTooShort, nil)
	}

	endpoint := strings.TrimSpace(in.Endpoint)
	if endpoint == "" {
		return Request{}, newError(KindValidation, MsgNoEndpoint, nil)
	}
	if !ValidEndpoint(endpoint) {
		return Request{}, newError(KindValidation, MsgBadEndpoint, nil)
	}

	apiKey := strings.TrimSpace(in.APIKey)
	if policy.RequireAPIKey && apiKey == "" {
		return Request{}, newError(KindValidation, MsgNoAPIKey, nil)
	}

	audio := StripDataURLPrefix(payload)
	if policy.MaxBase64Length > 0 && len(audio) > policy.MaxBase64Length {
		return Request{}, newError(KindValidation, MsgTooLarge, nil)
	}

	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = DefaultLanguage
	}
	format := strings.TrimSpace(in.AudioFormat)
	if format == "" {
		format = DefaultAudioFormat
	}

	return Request{
		Language:    language,
		AudioFormat: format,
		AudioBase64: audio,
		Endpoint:    endpoint,
		APIKey:      apiKey,
	}, nil
}

// ValidEndpoint reports whether raw is an absolute http or https URL.
func ValidEndpoint(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
