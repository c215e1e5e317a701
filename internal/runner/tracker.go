package runner

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Run states reported by the tracker.
const (
	StateIdle     = "idle"
	StateRunning  = "running"
	StateFinished = "finished"
)

// Tracker counts job completions for the optional status endpoint. All
// methods are safe for concurrent use.
type Tracker struct {
	state   atomic.Value // string
	total   atomic.Int64
	doneN   atomic.Int64
	failedN atomic.Int64
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.state.Store(StateIdle)
	return t
}

func (t *Tracker) start(total int) {
	t.total.Store(int64(total))
	t.doneN.Store(0)
	t.failedN.Store(0)
	t.state.Store(StateRunning)
}

func (t *Tracker) done()   { t.doneN.Add(1) }
func (t *Tracker) fail()   { t.failedN.Add(1) }
func (t *Tracker) finish() { t.state.Store(StateFinished) }

// Snapshot is the JSON shape served by the status endpoint.
type Snapshot struct {
	State  string `json:"state"`
	Done   int64  `json:"done"`
	Failed int64  `json:"failed"`
	Total  int64  `json:"total"`
}

// Snapshot returns the current counters.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		State:  t.state.Load().(string),
		Done:   t.doneN.Load(),
		Failed: t.failedN.Load(),
		Total:  t.total.Load(),
	}
}

// ServeHTTP makes the tracker mountable as the /status handler.
func (t *Tracker) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(t.Snapshot())
}
