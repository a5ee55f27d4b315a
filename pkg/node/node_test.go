package node

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farolab/videowall/pkg/engine"
)

type staticStatus engine.Status

func (s staticStatus) Status() engine.Status { return engine.Status(s) }

func TestHealthz(t *testing.T) {
	n := New(staticStatus{})
	rec := httptest.NewRecorder()
	n.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", rec.Code)
	}
}

func TestInfo(t *testing.T) {
	n := New(staticStatus{Role: 2, Step: 41, Category: "ocean", LeaderPresent: true})
	rec := httptest.NewRecorder()
	n.Info(rec, httptest.NewRequest(http.MethodGet, "/info", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q", ct)
	}
	var got struct {
		PID           int    `json:"pid"`
		Role          int    `json:"role"`
		Step          int    `json:"step"`
		Category      string `json:"category"`
		LeaderPresent bool   `json:"leader_present"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.PID == 0 || got.Role != 2 || got.Step != 41 || got.Category != "ocean" || !got.LeaderPresent {
		t.Fatalf("info = %+v", got)
	}
}
