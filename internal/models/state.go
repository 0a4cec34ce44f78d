package models

import (
	"sync"
	"time"
)

// AutoState is the auto-cycle state machine position
type AutoState int

const (
	AutoIdle AutoState = iota
	AutoRunning
)

func (s AutoState) String() string {
	switch s {
	case AutoIdle:
		return "idle"
	case AutoRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Source tells which path produced an EffectResult
type Source string

const (
	SourceManual Source = "manual"
	SourceAuto   Source = "auto"
)

// EffectHistory keeps the most recent effect applications for status and
// monitoring. Only metadata is retained; output images are not.
type EffectHistory struct {
	mu         sync.RWMutex
	entries    []HistoryEntry
	maxEntries int
	total      int
	totalTime  time.Duration
}

type HistoryEntry struct {
	Effect   string
	Source   Source
	Duration time.Duration
	At       time.Time
}

type HistoryStats struct {
	Total       int
	AverageTime time.Duration
	Last        *HistoryEntry
}

func NewEffectHistory(maxEntries int) *EffectHistory {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &EffectHistory{
		entries:    make([]HistoryEntry, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

func (h *EffectHistory) Record(source Source, result *EffectResult) {
	if result == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, HistoryEntry{
		Effect:   result.Effect,
		Source:   source,
		Duration: result.Duration,
		At:       time.Now(),
	})
	if len(h.entries) > h.maxEntries {
		h.entries = h.entries[1:]
	}
	h.total++
	h.totalTime += result.Duration
}

// Entries returns the retained entries, oldest first
func (h *EffectHistory) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *EffectHistory) Stats() HistoryStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := HistoryStats{Total: h.total}
	if h.total > 0 {
		stats.AverageTime = h.totalTime / time.Duration(h.total)
	}
	if n := len(h.entries); n > 0 {
		last := h.entries[n-1]
		stats.Last = &last
	}
	return stats
}
