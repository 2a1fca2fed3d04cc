package passlog

import (
	"fmt"
	"time"
)

// Kind labels which pass produced an entry.
type Kind string

// Pass kinds.
const (
	KindForward  Kind = "forward"
	KindBackward Kind = "backward"
)

// Entry is the persisted record of one pass: the run it belonged to, the
// output value, the named leaf inputs it ran under and, for backward passes,
// the gradients of named nodes. Entries record pass results only — graph
// structure is never persisted.
type Entry struct {
	RunID     string             `json:"run_id"`
	Kind      Kind               `json:"kind"`
	Root      float64            `json:"root"`
	Inputs    map[string]float64 `json:"inputs,omitempty"`
	Gradients map[string]float64 `json:"gradients,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// validate rejects entries a store cannot key.
func (e Entry) validate() error {
	if e.RunID == "" {
		return fmt.Errorf("%w: empty run ID", ErrInvalidEntry)
	}
	if e.Kind != KindForward && e.Kind != KindBackward {
		return fmt.Errorf("%w: kind %q", ErrInvalidEntry, e.Kind)
	}
	return nil
}
