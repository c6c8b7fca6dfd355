package core

import "sync"

// DefaultHistorySize is how many entries each channel log keeps by default.
const DefaultHistorySize = 5

// ActivityLog keeps the most recent entries of every channel, oldest first.
// Logs are created on first append and kept for the process lifetime; each
// one is bounded so retention stays small.
type ActivityLog struct {
	mu    sync.RWMutex
	logs  map[string]*channelLog
	limit int
}

type channelLog struct {
	mu      sync.Mutex
	entries []string
}

// NewActivityLog builds an empty log set. limit <= 0 selects the default.
func NewActivityLog(limit int) *ActivityLog {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &ActivityLog{
		logs:  make(map[string]*channelLog),
		limit: limit,
	}
}

// Limit returns the per-channel entry cap.
func (a *ActivityLog) Limit() int {
	return a.limit
}

// Append pushes message onto channel's log, evicting the oldest entries on overflow.
func (a *ActivityLog) Append(channel, message string) {
	l := a.logFor(channel)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, message)
	if over := len(l.entries) - a.limit; over > 0 {
		// Copy down so the backing array does not grow without bound.
		n := copy(l.entries, l.entries[over:])
		clear(l.entries[n:])
		l.entries = l.entries[:n]
	}
}

// Recent returns a copy of channel's entries, oldest first. Unknown channels
// yield an empty slice.
func (a *ActivityLog) Recent(channel string) []string {
	a.mu.RLock()
	l, ok := a.logs[channel]
	a.mu.RUnlock()
	if !ok {
		return []string{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

func (a *ActivityLog) logFor(channel string) *channelLog {
	a.mu.RLock()
	l, ok := a.logs[channel]
	a.mu.RUnlock()
	if ok {
		return l
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if l, ok = a.logs[channel]; ok {
		return l
	}
	l = &channelLog{entries: make([]string, 0, a.limit+1)}
	a.logs[channel] = l
	return l
}
