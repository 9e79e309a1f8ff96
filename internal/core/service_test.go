package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rorical/RoriVoice/internal/detection"
	"github.com/Rorical/RoriVoice/internal/eventbus"
)

// mockAnalyzer implements Analyzer for testing.
type mockAnalyzer struct {
	result detection.Result
	err    error
	// block, when set, holds every call until it is closed or the
	// call's context ends.
	block  chan struct{}
	called chan context.Context
}

func (m *mockAnalyzer) Analyze(ctx context.Context, _ detection.Request) (detection.Result, error) {
	if m.called != nil {
		m.called <- ctx
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return detection.Result{}, &detection.Error{Kind: detection.KindCanceled, Message: detection.MsgCanceled, Err: ctx.Err()}
		}
	}
	return m.result, m.err
}

func nextState(t *testing.T, eb *eventbus.EventBus) eventbus.StateUpdateEvent {
	t.Helper()
	select {
	case ev := <-eb.CoreToUI():
		state, ok := ev.(eventbus.StateUpdateEvent)
		if !ok {
			t.Fatalf("unexpected event %T", ev)
		}
		return state
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for state update")
	}
	return eventbus.StateUpdateEvent{}
}

func startService(t *testing.T, a Analyzer) (*AnalyzerService, *eventbus.EventBus) {
	t.Helper()
	eb := eventbus.NewEventBus()
	svc := NewAnalyzerService(a, eb, zerolog.Nop())
	svc.Start()
	t.Cleanup(func() {
		svc.Stop()
		eb.Close()
	})

	initial := nextState(t, eb)
	if initial.IsProcessing || initial.Generation != 0 {
		t.Fatalf("initial state = %+v", initial)
	}
	return svc, eb
}

func TestServiceSuccess(t *testing.T) {
	want := detection.Result{Classification: detection.ClassificationAI, ConfidenceScore: 0.873, Language: "en", Status: "success", Explanation: "x"}
	_, eb := startService(t, &mockAnalyzer{result: want})

	if err := eb.SendToCore(eventbus.AnalyzeRequestEvent{Request: detection.Request{Endpoint: "http://unused"}}); err != nil {
		t.Fatalf("SendToCore: %v", err)
	}

	started := nextState(t, eb)
	if !started.IsProcessing || started.Generation != 1 || started.RequestID == "" {
		t.Errorf("started = %+v", started)
	}
	if started.Result != nil || started.Error != nil {
		t.Errorf("previous outcome not cleared: %+v", started)
	}

	done := nextState(t, eb)
	if done.IsProcessing {
		t.Error("loading not cleared")
	}
	if done.Result == nil || *done.Result != want {
		t.Errorf("result = %+v", done.Result)
	}
	if done.RequestID != started.RequestID {
		t.Errorf("request id changed: %q -> %q", started.RequestID, done.RequestID)
	}
}

func TestServiceError(t *testing.T) {
	serverErr := &detection.Error{Kind: detection.KindServer, Message: "bad audio", StatusCode: 500}
	_, eb := startService(t, &mockAnalyzer{err: serverErr})

	if err := eb.SendToCore(eventbus.AnalyzeRequestEvent{}); err != nil {
		t.Fatalf("SendToCore: %v", err)
	}
	nextState(t, eb)
	done := nextState(t, eb)

	if done.IsProcessing || done.Result != nil {
		t.Errorf("done = %+v", done)
	}
	if detection.UserMessage(done.Error) != "bad audio" {
		t.Errorf("error = %v", done.Error)
	}
}

func TestServiceTimeoutClearsLoadingOnce(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	client := detection.NewClient(detection.Config{Timeout: 50 * time.Millisecond}, zerolog.Nop())
	svc, eb := startService(t, client)

	req := detection.Request{Endpoint: srv.URL, Language: "English", AudioFormat: "mp3", AudioBase64: "QUJD"}
	if err := eb.SendToCore(eventbus.AnalyzeRequestEvent{Request: req}); err != nil {
		t.Fatalf("SendToCore: %v", err)
	}
	if started := nextState(t, eb); !started.IsProcessing {
		t.Fatalf("started = %+v", started)
	}
	done := nextState(t, eb)
	if done.IsProcessing {
		t.Fatal("loading not cleared after timeout")
	}
	if detection.KindOf(done.Error) != detection.KindTimeout {
		t.Errorf("kind = %q (%v)", detection.KindOf(done.Error), done.Error)
	}

	select {
	case ev := <-eb.CoreToUI():
		t.Errorf("unexpected extra state update %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}

	if svc.State().FinishProcessingWithError(done.Generation, errors.New("late")) {
		t.Error("generation finished twice")
	}
}

func TestServiceNewRequestSupersedesOld(t *testing.T) {
	mock := &mockAnalyzer{
		result: detection.Result{Classification: detection.ClassificationHuman, ConfidenceScore: 0.42},
		block:  make(chan struct{}),
		called: make(chan context.Context, 2),
	}
	_, eb := startService(t, mock)

	if err := eb.SendToCore(eventbus.AnalyzeRequestEvent{}); err != nil {
		t.Fatalf("first send: %v", err)
	}
	first := <-mock.called
	if s := nextState(t, eb); s.Generation != 1 {
		t.Fatalf("state = %+v", s)
	}

	if err := eb.SendToCore(eventbus.AnalyzeRequestEvent{}); err != nil {
		t.Fatalf("second send: %v", err)
	}
	<-mock.called
	if s := nextState(t, eb); s.Generation != 2 || !s.IsProcessing {
		t.Fatalf("state = %+v", s)
	}

	select {
	case <-first.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("superseded request was not cancelled")
	}

	close(mock.block)
	done := nextState(t, eb)
	if done.Generation != 2 || done.IsProcessing || done.Error != nil || done.Result == nil {
		t.Errorf("done = %+v", done)
	}
}

func TestStateIgnoresStaleGenerations(t *testing.T) {
	s := NewAnalyzerState()
	g1 := s.StartProcessing("a")
	g2 := s.StartProcessing("b")

	if s.FinishProcessingWithResult(g1, detection.Result{Classification: detection.ClassificationAI}) {
		t.Error("stale generation applied")
	}
	if !s.Snapshot().IsProcessing {
		t.Error("stale completion cleared loading")
	}
	if !s.FinishProcessingWithResult(g2, detection.Result{Classification: detection.ClassificationHuman}) {
		t.Error("current generation rejected")
	}
	if s.FinishProcessingWithError(g2, errors.New("again")) {
		t.Error("generation finished twice")
	}

	snap := s.Snapshot()
	if snap.IsProcessing || snap.Generation != 2 || snap.RequestID != "b" {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Result == nil || snap.Result.Classification != detection.ClassificationHuman {
		t.Errorf("result = %+v", snap.Result)
	}
	if snap.Error != nil {
		t.Errorf("error = %v", snap.Error)
	}
}
