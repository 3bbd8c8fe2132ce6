// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "sync"

// ShutdownSignal is a one-shot request to stop the server. It is fired by the
// ShutdownServer RPC, by OS interrupts and by serve failures, and observed by
// a single Coordinator.
type ShutdownSignal struct {
	once   sync.Once
	done   chan struct{}
	mu     sync.Mutex
	reason string
}

// NewShutdownSignal returns an unfired signal.
func NewShutdownSignal() *ShutdownSignal {
	return &ShutdownSignal{done: make(chan struct{})}
}

// Fire requests shutdown. Only the first call has an effect; it reports
// whether this call was the one that fired the signal.
func (s *ShutdownSignal) Fire(reason string) bool {
	fired := false
	s.once.Do(func() {
		s.mu.Lock()
		s.reason = reason
		s.mu.Unlock()
		close(s.done)
		fired = true
	})
	return fired
}

// Done is closed once the signal has fired.
func (s *ShutdownSignal) Done() <-chan struct{} {
	return s.done
}

// Fired reports whether the signal has fired.
func (s *ShutdownSignal) Fired() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Reason returns the reason passed to the first Fire, or "".
func (s *ShutdownSignal) Reason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}
