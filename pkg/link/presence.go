package link

import (
	"sync"
	"time"
)

// Protocol cadence. The heartbeat interval sits well under the absence
// timeout so a single lost packet never flips presence; it takes two to
// three consecutive losses.
const (
	DefaultHeartbeatInterval = 10 * time.Second
	DefaultAbsenceTimeout    = 25 * time.Second
)

// Monitor tracks when a leader frame was last seen. Written by the receive
// goroutine, read by the engine loop, hence the lock. Before the first
// observation the leader counts as absent: a node boots assuming it is on
// its own.
type Monitor struct {
	mu       sync.Mutex
	timeout  time.Duration
	lastSeen time.Time
	seen     bool
}

// NewMonitor builds a monitor; timeout <= 0 selects DefaultAbsenceTimeout.
func NewMonitor(timeout time.Duration) *Monitor {
	if timeout <= 0 {
		timeout = DefaultAbsenceTimeout
	}
	return &Monitor{timeout: timeout}
}

// Observe records a leader sighting at t.
func (m *Monitor) Observe(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen = t
	m.seen = true
}

// Present reports whether a leader frame was seen within the timeout
// preceding now.
func (m *Monitor) Present(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen && now.Sub(m.lastSeen) < m.timeout
}
