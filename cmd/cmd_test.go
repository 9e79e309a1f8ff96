package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Rorical/RoriVoice/internal/config"
	"github.com/Rorical/RoriVoice/internal/detection"
)

func testConfig(t *testing.T, endpoint string) *config.Config {
	t.Helper()
	t.Setenv("RORIVOICE_ENDPOINT", "")
	t.Setenv("RORIVOICE_API_KEY", "")

	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	p := cfg.Profiles[config.DefaultProfileName]
	p.Endpoint = endpoint
	cfg.Profiles[config.DefaultProfileName] = p
	if err := cfg.UseProfile(config.DefaultProfileName); err != nil {
		t.Fatalf("UseProfile: %v", err)
	}
	return cfg
}

func TestBuildInput(t *testing.T) {
	profile := config.DefaultProfile()
	profile.APIKey = "profile-key"

	audio := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(audio, []byte("RIFF....WAVEfmt "), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Run("file sets format from extension", func(t *testing.T) {
		in, err := buildInput(analyzeOptions{file: audio}, profile, nil)
		if err != nil {
			t.Fatalf("buildInput: %v", err)
		}
		if in.Base64 != "UklGRi4uLi5XQVZFZm10IA==" || in.AudioFormat != "wav" {
			t.Errorf("in = %+v", in)
		}
		if in.APIKey != "profile-key" || in.Endpoint != profile.Endpoint {
			t.Errorf("profile defaults not applied: %+v", in)
		}
	})

	t.Run("flags override profile", func(t *testing.T) {
		in, err := buildInput(analyzeOptions{base64: "abc", language: "Tamil", apiKey: "flag-key"}, profile, nil)
		if err != nil {
			t.Fatalf("buildInput: %v", err)
		}
		if in.Language != "Tamil" || in.APIKey != "flag-key" || in.Base64 != "abc" {
			t.Errorf("in = %+v", in)
		}
	})

	t.Run("stdin", func(t *testing.T) {
		in, err := buildInput(analyzeOptions{base64: "-"}, profile, strings.NewReader("payload\n"))
		if err != nil {
			t.Fatalf("buildInput: %v", err)
		}
		if in.Base64 != "payload\n" {
			t.Errorf("Base64 = %q", in.Base64)
		}
	})

	t.Run("errors", func(t *testing.T) {
		if _, err := buildInput(analyzeOptions{}, profile, nil); err == nil {
			t.Error("expected error with no input")
		}
		if _, err := buildInput(analyzeOptions{file: audio, base64: "x"}, profile, nil); err == nil {
			t.Error("expected error with both inputs")
		}
	})
}

func TestRunAnalyze(t *testing.T) {
	var got detection.Body
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","language":"Tamil","classification":"AI_GENERATED","confidenceScore":0.87,"explanation":"flat pitch"}`))
	}))
	defer srv.Close()
	cfg := testConfig(t, srv.URL)

	payload := strings.Repeat("QUJD", 20)
	var out bytes.Buffer
	err := runAnalyze(context.Background(), cfg, analyzeOptions{base64: "data:audio/mpeg;base64," + payload, language: "Tamil"}, nil, &out, zerolog.Nop())
	if err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}
	if got.AudioBase64 != payload || got.Language != "Tamil" {
		t.Errorf("body = %+v", got)
	}
	if !strings.Contains(out.String(), "AI Generated") || !strings.Contains(out.String(), "87%") {
		t.Errorf("output:\n%s", out.String())
	}

	out.Reset()
	err = runAnalyze(context.Background(), cfg, analyzeOptions{base64: payload, asJSON: true}, nil, &out, zerolog.Nop())
	if err != nil {
		t.Fatalf("runAnalyze json: %v", err)
	}
	var res detection.Result
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if res.Classification != detection.ClassificationAI {
		t.Errorf("res = %+v", res)
	}
}

func TestRunAnalyzeReportsBannerText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Unsupported audio format"}`))
	}))
	defer srv.Close()
	cfg := testConfig(t, srv.URL)

	err := runAnalyze(context.Background(), cfg, analyzeOptions{base64: strings.Repeat("A", 60)}, nil, &bytes.Buffer{}, zerolog.Nop())
	if err == nil || err.Error() != "Unsupported audio format" {
		t.Errorf("err = %v", err)
	}

	err = runAnalyze(context.Background(), cfg, analyzeOptions{base64: "short"}, nil, &bytes.Buffer{}, zerolog.Nop())
	if err == nil || err.Error() != detection.MsgTooShort {
		t.Errorf("err = %v", err)
	}
}

func TestRunHealth(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer up.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	cfg := testConfig(t, up.URL+"/api/voice-detection")
	broken := config.DefaultProfile()
	broken.Endpoint = down.URL + "/api/voice-detection"
	cfg.Profiles["broken"] = broken

	var out bytes.Buffer
	if err := runHealth(context.Background(), cfg, []string{config.DefaultProfileName}, &out, zerolog.Nop()); err != nil {
		t.Fatalf("runHealth: %v", err)
	}
	if !strings.Contains(out.String(), "UP") || !strings.Contains(out.String(), "healthy") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	err := runHealth(context.Background(), cfg, cfg.ProfileNames(), &out, zerolog.Nop())
	if err == nil {
		t.Fatal("expected failure when one profile is down")
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "broken") || !strings.Contains(lines[0], "DOWN") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRemoveProfile(t *testing.T) {
	cfg := testConfig(t, detection.DefaultEndpoint)
	cfg.Profiles["work"] = config.DefaultProfile()

	removeProfile(cfg, config.DefaultProfileName)
	if cfg.ActiveProfile != "work" {
		t.Errorf("active = %q", cfg.ActiveProfile)
	}

	removeProfile(cfg, "work")
	if _, ok := cfg.Profiles[config.DefaultProfileName]; !ok || cfg.ActiveProfile != config.DefaultProfileName {
		t.Errorf("last delete should recreate the default, got %+v", cfg.Profiles)
	}
}
