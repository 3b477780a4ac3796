// Package runstate holds the mutable state of a single translation run:
// the cancellation flag, the memoized fallback language and the list of
// files that could not be translated.
package runstate

import (
	"strings"
	"sync"
	"sync/atomic"
)

// State is shared by the orchestrator, the language resolver and the report
// sink. Cancel may be called from any goroutine.
type State struct {
	cancelled atomic.Bool

	mu              sync.Mutex
	fallbackLang    string
	fallbackEnabled bool
	failedFiles     []string
}

// New returns a fresh state.
func New() *State {
	return &State{}
}

// Reset clears everything, including the memoized fallback language.
func (s *State) Reset() {
	s.cancelled.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallbackLang = ""
	s.fallbackEnabled = false
	s.failedFiles = nil
}

// Cancel requests that no further jobs are scheduled. It reports whether
// this call was the one that flipped the flag.
func (s *State) Cancel() bool {
	return s.cancelled.CompareAndSwap(false, true)
}

// Cancelled reports whether cancellation has been requested.
func (s *State) Cancelled() bool {
	return s.cancelled.Load()
}

// Fallback returns the memoized "use for all" language, if any.
func (s *State) Fallback() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fallbackEnabled || s.fallbackLang == "" {
		return "", false
	}
	return s.fallbackLang, true
}

// Memoize stores lang as the fallback for the rest of the run. Only the
// first call has an effect; it reports whether the value was stored.
func (s *State) Memoize(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fallbackEnabled {
		return false
	}
	s.fallbackLang = lang
	s.fallbackEnabled = true
	return true
}

// RecordFailure appends path to the failed files list.
func (s *State) RecordFailure(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedFiles = append(s.failedFiles, path)
}

// FailedFiles returns a copy of the failed files in the order they failed.
func (s *State) FailedFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.failedFiles))
	copy(out, s.failedFiles)
	return out
}
