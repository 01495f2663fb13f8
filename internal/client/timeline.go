package client

import (
	"sort"
	"sync"

	"github.com/vietanh2810/school-portal/internal/domain"
)

// Timeline is the local, ordered view of the chat. Messages are unique by id.
type Timeline struct {
	mu       sync.RWMutex
	messages []domain.EnrichedMessage
	seen     map[uint]struct{}
}

func NewTimeline() *Timeline {
	return &Timeline{
		seen: make(map[uint]struct{}),
	}
}

// Seed installs a history snapshot. Live messages that arrived before the
// snapshot and are not part of it are kept.
func (t *Timeline) Seed(history []domain.EnrichedMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	merged := make([]domain.EnrichedMessage, 0, len(history)+len(t.messages))
	seen := make(map[uint]struct{}, len(history)+len(t.messages))
	for _, m := range history {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range t.messages {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Before(merged[j].ChatMessage) })

	t.messages = merged
	t.seen = seen
}

// Append adds msg at the end and reports false if it was already present.
func (t *Timeline) Append(msg domain.EnrichedMessage) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[msg.ID]; ok {
		return false
	}
	t.seen[msg.ID] = struct{}{}
	t.messages = append(t.messages, msg)

	return true
}

func (t *Timeline) Messages() []domain.EnrichedMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return append([]domain.EnrichedMessage(nil), t.messages...)
}

func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.messages)
}
