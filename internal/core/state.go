package core

import (
	"sync"

	"github.com/Rorical/RoriVoice/internal/detection"
)

// AnalyzerState is the single source of truth for the current analysis.
// Every attempt gets a generation; completions for an older generation
// are ignored so a late response cannot overwrite newer state.
type AnalyzerState struct {
	mu           sync.RWMutex
	isProcessing bool
	generation   uint64
	requestID    string
	lastResult   *detection.Result
	lastError    error
}

// Snapshot is a consistent copy of the state.
type Snapshot struct {
	IsProcessing bool
	Generation   uint64
	RequestID    string
	Result       *detection.Result
	Error        error
}

func NewAnalyzerState() *AnalyzerState {
	return &AnalyzerState{}
}

// StartProcessing opens a new generation and clears the previous outcome.
func (s *AnalyzerState) StartProcessing(requestID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.isProcessing = true
	s.requestID = requestID
	s.lastResult = nil
	s.lastError = nil
	return s.generation
}

// FinishProcessingWithResult records a verdict for gen. It reports false
// when gen is no longer current or was already finished.
func (s *AnalyzerState) FinishProcessingWithResult(gen uint64, result detection.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isCurrentLocked(gen) {
		return false
	}
	s.isProcessing = false
	s.lastResult = &result
	s.lastError = nil
	return true
}

// FinishProcessingWithError records a failure for gen, with the same
// staleness rule as FinishProcessingWithResult.
func (s *AnalyzerState) FinishProcessingWithError(gen uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isCurrentLocked(gen) {
		return false
	}
	s.isProcessing = false
	s.lastResult = nil
	s.lastError = err
	return true
}

func (s *AnalyzerState) isCurrentLocked(gen uint64) bool {
	return gen == s.generation && s.isProcessing
}

func (s *AnalyzerState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		IsProcessing: s.isProcessing,
		Generation:   s.generation,
		RequestID:    s.requestID,
		Error:        s.lastError,
	}
	if s.lastResult != nil {
		r := *s.lastResult
		snap.Result = &r
	}
	return snap
}
