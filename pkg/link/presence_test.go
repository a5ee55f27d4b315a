package link

import (
	"testing"
	"time"
)

func TestPresenceStartsAbsent(t *testing.T) {
	m := NewMonitor(25 * time.Second)
	if m.Present(time.Now()) {
		t.Fatal("leader present before any message was ever seen")
	}
}

func TestPresenceHysteresis(t *testing.T) {
	m := NewMonitor(25 * time.Second)
	t0 := time.Unix(1700000000, 0)

	// Heartbeats every 10s; one dropped beat leaves a 20s gap which must
	// not flip presence. Only exceeding the 25s window does.
	m.Observe(t0)
	if !m.Present(t0.Add(9 * time.Second)) {
		t.Fatal("absent right after a heartbeat")
	}
	if !m.Present(t0.Add(20 * time.Second)) {
		t.Fatal("absent after a single dropped heartbeat (20s gap)")
	}
	if m.Present(t0.Add(26 * time.Second)) {
		t.Fatal("still present past the 25s timeout")
	}

	// A late frame re-arms the window.
	m.Observe(t0.Add(30 * time.Second))
	if !m.Present(t0.Add(40 * time.Second)) {
		t.Fatal("absent after the leader came back")
	}
}

func TestMonitorDefaultTimeout(t *testing.T) {
	m := NewMonitor(0)
	t0 := time.Unix(0, 0)
	m.Observe(t0)
	if !m.Present(t0.Add(24 * time.Second)) {
		t.Fatal("default timeout shorter than 25s")
	}
	if m.Present(t0.Add(25 * time.Second)) {
		t.Fatal("default timeout longer than 25s")
	}
}
