package app

import (
	"sync"
	"time"

	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

// SpamFilter counts messages per party in fixed windows. Every counter is
// dropped when a window ends, so a burst straddling two windows can pass.
type SpamFilter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu     sync.Mutex
	start  time.Time
	counts map[platform.SteamID]int
}

// NewSpamFilter allows limit messages per window. A limit of 0 or less
// disables the filter.
func NewSpamFilter(limit int, window time.Duration) *SpamFilter {
	if window <= 0 {
		window = time.Second
	}
	return &SpamFilter{
		limit:  limit,
		window: window,
		now:    time.Now,
		counts: make(map[platform.SteamID]int),
	}
}

// Hit counts one message from id. It reports true exactly once per window,
// on the message that goes over the limit.
func (f *SpamFilter) Hit(id platform.SteamID) bool {
	if f.limit <= 0 {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if now.Sub(f.start) >= f.window {
		clear(f.counts)
		f.start = now
	}

	f.counts[id]++
	return f.counts[id] == f.limit+1
}
