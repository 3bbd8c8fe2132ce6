// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package installer

import (
	"sync"
	"time"

	"github.com/ManuGH/installd/internal/metrics"
)

// Session is an install session as recorded by Install.
type Session struct {
	InstallID string
	Files     []string
	CreatedAt time.Time
}

// entry wraps a session with its expiration time.
type entry struct {
	session  Session
	declared map[string]struct{}
	expires  time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// Registry remembers install sessions. It is advisory: nothing in the
// installer refuses a request because a session is unknown.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time

	janitor  *janitor
	stopOnce sync.Once
}

// NewRegistry creates a registry whose sessions expire ttl after their last
// Install call. A non-positive ttl keeps sessions until Stop. When ttl is
// positive a janitor goroutine purges expired sessions; call Stop to end it.
func NewRegistry(ttl time.Duration) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
	if ttl > 0 {
		r.janitor = &janitor{
			interval: janitorInterval(ttl),
			stop:     make(chan struct{}),
			done:     make(chan struct{}),
		}
		go r.janitor.run(r)
	}
	return r
}

func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// Open records a session. Opening an existing id replaces its file list and
// refreshes its expiration.
func (r *Registry) Open(installID string, files []string) Session {
	now := r.now()
	s := Session{
		InstallID: installID,
		Files:     append([]string(nil), files...),
		CreatedAt: now,
	}
	declared := make(map[string]struct{}, len(files))
	for _, f := range files {
		declared[f] = struct{}{}
	}

	e := &entry{session: s, declared: declared}
	if r.ttl > 0 {
		e.expires = now.Add(r.ttl)
	}

	r.mu.Lock()
	r.entries[installID] = e
	n := len(r.entries)
	r.mu.Unlock()

	metrics.SetSessionsActive(n)
	return s
}

// Get returns the session for installID if it is known and not expired.
func (r *Registry) Get(installID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[installID]
	if !ok || e.isExpired(r.now()) {
		return Session{}, false
	}
	return e.session, true
}

// Declared reports whether the session is known and, if so, whether name was
// part of its declared file list.
func (r *Registry) Declared(installID, name string) (known, declared bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[installID]
	if !ok || e.isExpired(r.now()) {
		return false, false
	}
	_, declared = e.declared[name]
	return true, declared
}

// Len returns the number of tracked sessions, including expired ones not yet
// purged.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// deleteExpired removes expired sessions and returns how many were removed.
func (r *Registry) deleteExpired() int {
	now := r.now()

	r.mu.Lock()
	count := 0
	for id, e := range r.entries {
		if e.isExpired(now) {
			delete(r.entries, id)
			count++
		}
	}
	n := len(r.entries)
	r.mu.Unlock()

	if count > 0 {
		metrics.SetSessionsActive(n)
	}
	return count
}

// Stop ends the janitor goroutine. It is safe to call more than once.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		if r.janitor != nil {
			close(r.janitor.stop)
			<-r.janitor.done
		}
	})
}

// janitor performs periodic cleanup of expired sessions.
type janitor struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func (j *janitor) run(r *Registry) {
	defer close(j.done)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.deleteExpired()
		case <-j.stop:
			return
		}
	}
}
