package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Rorical/RoriVoice/internal/detection"
	"github.com/Rorical/RoriVoice/internal/eventbus"
)

// Analyzer sends one analysis request. *detection.Client implements it.
type Analyzer interface {
	Analyze(ctx context.Context, req detection.Request) (detection.Result, error)
}

// AnalyzerService runs analyses on behalf of the UI. It owns the only
// network call of the application.
type AnalyzerService struct {
	analyzer Analyzer
	state    *AnalyzerState
	eventBus *eventbus.EventBus
	log      zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	inflightMu     sync.Mutex
	inflightCancel context.CancelFunc // cancels the current attempt
}

func NewAnalyzerService(analyzer Analyzer, eb *eventbus.EventBus, log zerolog.Logger) *AnalyzerService {
	ctx, cancel := context.WithCancel(context.Background())
	return &AnalyzerService{
		analyzer: analyzer,
		state:    NewAnalyzerState(),
		eventBus: eb,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs the core logic in a goroutine
func (s *AnalyzerService) Start() {
	// Send initial state to UI immediately
	s.pushStateToUI()
	s.wg.Add(1)
	go s.eventLoop()
}

// Stop cancels any in-flight request and waits for it to settle, so
// nothing is sent on the bus after Stop returns.
func (s *AnalyzerService) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *AnalyzerService) State() *AnalyzerState {
	return s.state
}

func (s *AnalyzerService) eventLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.eventBus.UIToCore():
			if !ok {
				return
			}
			s.handleUIEvent(event)
		}
	}
}

func (s *AnalyzerService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.AnalyzeRequestEvent:
		s.startAnalysis(e.Request)
	}
}

// startAnalysis begins a new generation and runs the request without
// blocking the event loop. A request still running from an older
// generation is cancelled; its outcome would be discarded anyway.
func (s *AnalyzerService) startAnalysis(req detection.Request) {
	requestID := uuid.NewString()
	gen := s.state.StartProcessing(requestID)

	ctx, cancel := context.WithCancel(s.ctx)
	s.inflightMu.Lock()
	if s.inflightCancel != nil {
		s.inflightCancel()
	}
	s.inflightCancel = cancel
	s.inflightMu.Unlock()

	s.log.Info().
		Str("request_id", requestID).
		Uint64("generation", gen).
		Str("endpoint", req.Endpoint).
		Str("language", req.Language).
		Int("payload_chars", len(req.AudioBase64)).
		Msg("analysis started")
	s.pushStateToUI()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.runAnalysis(ctx, gen, requestID, req)
	}()
}

func (s *AnalyzerService) runAnalysis(ctx context.Context, gen uint64, requestID string, req detection.Request) {
	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, req)
	elapsed := time.Since(start)

	var applied bool
	if err != nil {
		applied = s.state.FinishProcessingWithError(gen, err)
	} else {
		applied = s.state.FinishProcessingWithResult(gen, result)
	}

	if !applied {
		s.log.Debug().
			Str("request_id", requestID).
			Uint64("generation", gen).
			Dur("elapsed", elapsed).
			Msg("discarding stale analysis outcome")
		return
	}

	if err != nil {
		s.log.Warn().
			Err(err).
			Str("request_id", requestID).
			Uint64("generation", gen).
			Str("kind", string(detection.KindOf(err))).
			Dur("elapsed", elapsed).
			Msg("analysis failed")
	} else {
		s.log.Info().
			Str("request_id", requestID).
			Uint64("generation", gen).
			Str("classification", string(result.Classification)).
			Float64("confidence", result.ConfidenceScore).
			Dur("elapsed", elapsed).
			Msg("analysis finished")
	}
	s.pushStateToUI()
}

func (s *AnalyzerService) pushStateToUI() {
	snap := s.state.Snapshot()
	if err := s.eventBus.SendToUI(eventbus.StateUpdateEvent{
		IsProcessing: snap.IsProcessing,
		Result:       snap.Result,
		Error:        snap.Error,
		Generation:   snap.Generation,
		RequestID:    snap.RequestID,
	}); err != nil {
		s.log.Error().Err(err).Uint64("generation", snap.Generation).Msg("failed to send state to UI")
	}
}
