package hits

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Audit is the persisted record of one selection run: which thresholds were
// asked for, which were finally applied after relaxation, and which designs
// survived. It exists so a promoted generation can always be traced back to
// the exact criteria that picked it.
type Audit struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Metrics   string    `json:"metrics"`
	Requested []string  `json:"requested"`
	Final     []string  `json:"final"`
	Rounds    int       `json:"rounds"`
	Hits      []string  `json:"hits"`
}

// NewAudit builds the audit record for a selection result.
func NewAudit(metricsPath string, requested []Predicate, res *Result) *Audit {
	return &Audit{
		ID:        uuid.NewString(),
		Time:      time.Now().UTC(),
		Metrics:   metricsPath,
		Requested: predicateStrings(requested),
		Final:     predicateStrings(res.Predicates),
		Rounds:    res.Rounds,
		Hits:      res.Names(),
	}
}

// WriteAudit persists the record as indented JSON.
func WriteAudit(path string, a *Audit) error {
	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode selection audit: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write selection audit: %w", err)
	}
	return nil
}
