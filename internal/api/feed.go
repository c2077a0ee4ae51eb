package api

import (
	"sync"
	"time"

	"github.com/julianstephens/habitquest/internal/models"
)

// FeedEntry is a reward event with the time the server received it
type FeedEntry struct {
	models.RewardEvent
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

// Feed keeps the most recent reward events in a ring buffer
type Feed struct {
	mu      sync.Mutex
	entries []FeedEntry
	max     int
}

// NewFeed creates a feed holding at most max entries
func NewFeed(max int) *Feed {
	return &Feed{entries: make([]FeedEntry, 0, max), max: max}
}

// Add appends events, dropping the oldest ones past capacity
func (f *Feed) Add(events []models.RewardEvent, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ev := range events {
		if len(f.entries) >= f.max {
			f.entries = f.entries[1:]
		}
		f.entries = append(f.entries, FeedEntry{RewardEvent: ev, Message: ev.Message(), ReceivedAt: at})
	}
}

// Recent returns up to limit entries, newest first
func (f *Feed) Recent(limit int) []FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit <= 0 || limit > len(f.entries) {
		limit = len(f.entries)
	}
	out := make([]FeedEntry, 0, limit)
	for i := len(f.entries) - 1; i >= len(f.entries)-limit; i-- {
		out = append(out, f.entries[i])
	}
	return out
}
