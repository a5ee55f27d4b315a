// Package node exposes the small HTTP surface an exhibit node offers for
// on-site diagnosis: liveness, a status snapshot, and prometheus metrics
// (mounted by the caller).
package node

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/farolab/videowall/pkg/engine"
)

// StatusSource is anything that can report the engine's current snapshot.
type StatusSource interface {
	Status() engine.Status
}

type Node struct {
	src   StatusSource
	start time.Time
}

func New(src StatusSource) *Node {
	return &Node{src: src, start: time.Now()}
}

// Healthz returns 200 OK to indicate the node is alive.
func (n *Node) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Info writes a JSON snapshot: process info plus where the engine is in the
// category sequence and whether it currently sees a leader.
func (n *Node) Info(w http.ResponseWriter, _ *http.Request) {
	type resp struct {
		PID           int       `json:"pid"`
		Now           time.Time `json:"now"`
		UptimeSeconds float64   `json:"uptime_seconds"`
		Role          int       `json:"role"`
		Step          int       `json:"step"`
		Category      string    `json:"category"`
		LeaderPresent bool      `json:"leader_present"`
	}
	st := n.src.Status()
	data, _ := json.Marshal(resp{
		PID:           os.Getpid(),
		Now:           time.Now(),
		UptimeSeconds: time.Since(n.start).Seconds(),
		Role:          int(st.Role),
		Step:          st.Step,
		Category:      st.Category,
		LeaderPresent: st.LeaderPresent,
	})
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
