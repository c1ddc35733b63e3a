package notify

import (
	"sync"
	"time"
)

const (
	reasonCooldown  = "cooldown"
	reasonRateLimit = "rate_limit"
)

// throttle holds the send history of one (channel, endpoint) pair.
type throttle struct {
	mu         sync.Mutex
	sent       []time.Time
	lastSentAt time.Time
}

// admit checks both gates and records now when the send is allowed.
// A limit of 0 suppresses every send.
func (t *throttle) admit(now time.Time, window, cooldown time.Duration, limit int) (bool, string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	keep := t.sent[:0]
	for _, ts := range t.sent {
		if now.Sub(ts) < window {
			keep = append(keep, ts)
		}
	}
	t.sent = keep

	if !t.lastSentAt.IsZero() && cooldown > 0 && now.Sub(t.lastSentAt) < cooldown {
		return false, reasonCooldown
	}

	if len(t.sent) >= limit {
		return false, reasonRateLimit
	}

	t.sent = append(t.sent, now)
	t.lastSentAt = now
	return true, ""
}

func (t *throttle) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}
