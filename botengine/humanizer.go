package botengine

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Humanizer manages human-like pacing for bot responses.
type Humanizer struct {
	Enabled    bool
	MinDelayMs int
	MaxDelayMs int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHumanizer creates a humanizer with the default 1-3 second pre-send
// pause.
func NewHumanizer(enabled bool) *Humanizer {
	return &Humanizer{
		Enabled:    enabled,
		MinDelayMs: 1000,
		MaxDelayMs: 3000,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// PreSendDelay returns the pause to hold before delivering a reply.
func (h *Humanizer) PreSendDelay() time.Duration {
	if !h.Enabled {
		return 0
	}
	h.mu.Lock()
	ms := h.MinDelayMs + h.rng.Intn(h.MaxDelayMs-h.MinDelayMs+1)
	h.mu.Unlock()
	return time.Duration(ms) * time.Millisecond
}

// Wait sleeps for d or until the context is done, whichever comes first.
func (h *Humanizer) Wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
