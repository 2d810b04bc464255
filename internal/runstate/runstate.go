// Package runstate persists which controller loops are running and with
// what options, so a restart can resume where the previous process left
// off.
package runstate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patchgarden/gardener/internal/storage"
)

// LoopState records one loop's run flag and the options it was started
// with. Options are kept as a loose map so the snapshot survives option
// schema drift between versions.
type LoopState struct {
	Running bool           `json:"running"`
	Options map[string]any `json:"options,omitempty"`
}

// Snapshot is the full persisted run state. SessionID identifies the
// process run that last wrote it, which makes restart boundaries visible
// in the action log.
type Snapshot struct {
	SessionID string               `json:"sessionId"`
	Timestamp time.Time            `json:"timestamp"`
	Loops     map[string]LoopState `json:"loops"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		SessionID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Loops:     map[string]LoopState{},
	}
}

func (s *Snapshot) Validate() error {
	if s.Loops == nil {
		return fmt.Errorf("loops map is missing")
	}
	return nil
}

// Mark records a loop transition and refreshes the snapshot timestamp.
func (s *Snapshot) Mark(name string, running bool, options map[string]any) {
	if s.Loops == nil {
		s.Loops = map[string]LoopState{}
	}
	s.Loops[name] = LoopState{Running: running, Options: options}
	s.Timestamp = time.Now().UTC()
}

// Running reports whether the snapshot recorded the loop as running.
func (s *Snapshot) Running(name string) bool {
	return s.Loops[name].Running
}

// Keeper wraps the file store holding the snapshot.
type Keeper struct {
	store *storage.DocStore[*Snapshot]
}

func NewKeeper(path string) *Keeper {
	return &Keeper{store: storage.NewDocStore[*Snapshot](path)}
}

func (k *Keeper) Save(s *Snapshot) error {
	return k.store.Save(s)
}

// Load returns the last snapshot, or a fresh empty one when none exists.
func (k *Keeper) Load() (*Snapshot, error) {
	s, ok, err := k.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading run state: %w", err)
	}
	if !ok {
		return NewSnapshot(), nil
	}
	return s, nil
}
