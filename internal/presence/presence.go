// Package presence tracks which humans have recently sent a message.
package presence

import (
	"context"
	"sort"
	"time"

	"github.com/Carlavier/ai-chat-hub/internal/store"
)

// DefaultTTL is how long a sender stays listed after their last message.
const DefaultTTL = 30 * time.Second

// Tracker refreshes and lists presence markers.
type Tracker struct {
	store store.PresenceStore
	ttl   time.Duration
}

// NewTracker creates a tracker. A zero ttl means DefaultTTL; a negative ttl
// expires markers immediately.
func NewTracker(s store.PresenceStore, ttl time.Duration) *Tracker {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Tracker{store: s, ttl: ttl}
}

// Touch marks name as active for the tracker's TTL.
func (t *Tracker) Touch(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	return t.store.SetPresence(ctx, name, t.ttl)
}

// Active lists currently active names, sorted for display.
func (t *Tracker) Active(ctx context.Context) ([]string, error) {
	names, err := t.store.ListPresence(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
