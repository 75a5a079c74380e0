package harness

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// EventLog appends one NDJSON line per finished case to a log file.
// Logging is best effort: a write failure never affects the run.
type EventLog struct {
	mu   sync.Mutex
	path string
}

// NewEventLog returns an event log appending to path. The file is
// created on first use.
func NewEventLog(path string) *EventLog {
	return &EventLog{path: path}
}

// CaseFinished records the outcome of one case. Safe on a nil log.
func (l *EventLog) CaseFinished(runID string, cr CaseReport) {
	if l == nil {
		return
	}

	type event struct {
		TS      string  `json:"ts"`
		Run     string  `json:"run"`
		Case    string  `json:"case"`
		Verdict Verdict `json:"verdict"`
		Engine  string  `json:"engine,omitempty"`
		MS      int64   `json:"ms"`
		Detail  string  `json:"detail,omitempty"`
	}
	entry := event{
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Run:     runID,
		Case:    cr.Name,
		Verdict: cr.Verdict,
		Engine:  cr.Engine,
		MS:      cr.MS,
		Detail:  cr.Detail,
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(append(b, '\n'))
}
