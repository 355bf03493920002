// Package statsfeed is an optional live-progress broadcaster, modeled on
// grishkovelli-httptines's Stat/stat.go split: a JSON-marshalable
// snapshot of run progress (targets, processed, accepted, currently
// waiting) pushed to any connected viewer over a websocket. It is
// monitoring-only — nothing it serves accepts input back, so it does not
// reintroduce the "interactive menu UI" the spec's Non-goals exclude.
package statsfeed

import (
	"encoding/json"
	"slices"
	"sync"
	"time"
)

// Stats tracks the engine's live progress for broadcast to viewers.
type Stats struct {
	Targets   int `json:"targets"`
	Processed int `json:"processed"`
	Accepted  int `json:"accepted"`
	Waiting   int `json:"waiting"`

	m         sync.RWMutex
	waiting   []string
	recentHit []string
}

// NewStats builds a Stats tracker for a run of the given total target
// count (sum of all tasks across the whole batched run, if known).
func NewStats(targets int) *Stats {
	return &Stats{Targets: targets}
}

// MarkWaiting records that an endpoint is currently being probed.
func (s *Stats) MarkWaiting(endpoint string) {
	s.m.Lock()
	defer s.m.Unlock()
	if slices.Contains(s.waiting, endpoint) {
		return
	}
	s.waiting = append(s.waiting, endpoint)
	s.Waiting = len(s.waiting)
}

// UnmarkWaiting removes an endpoint from the in-flight set.
func (s *Stats) UnmarkWaiting(endpoint string) {
	s.m.Lock()
	defer s.m.Unlock()
	if i := slices.Index(s.waiting, endpoint); i != -1 {
		s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
	}
	s.Waiting = len(s.waiting)
}

// MarkProcessed increments the processed counter, regardless of outcome.
func (s *Stats) MarkProcessed() {
	s.m.Lock()
	s.Processed++
	s.m.Unlock()
}

// MarkAccepted increments the accepted counter and records the hit in a
// small rolling window of recent URLs.
func (s *Stats) MarkAccepted(url string) {
	s.m.Lock()
	s.Accepted++
	s.recentHit = append(s.recentHit, url)
	if len(s.recentHit) > 20 {
		s.recentHit = s.recentHit[len(s.recentHit)-20:]
	}
	s.m.Unlock()
}

// Snapshot returns a JSON-encoded copy of the current stats, safe to send
// to a websocket client without holding the lock during the write.
func (s *Stats) Snapshot() []byte {
	s.m.RLock()
	defer s.m.RUnlock()

	payload := struct {
		Targets   int      `json:"targets"`
		Processed int      `json:"processed"`
		Accepted  int      `json:"accepted"`
		Waiting   int      `json:"waiting"`
		Recent    []string `json:"recent"`
		At        string   `json:"at"`
	}{
		Targets:   s.Targets,
		Processed: s.Processed,
		Accepted:  s.Accepted,
		Waiting:   s.Waiting,
		Recent:    s.recentHit,
		At:        time.Now().Format(time.RFC3339),
	}
	b, _ := json.Marshal(payload)
	return b
}
