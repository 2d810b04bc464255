package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/patchgarden/gardener/internal/statedoc"
)

// Inbound event types delivered by the game socket.
const (
	TypeWelcome      = "Welcome"
	TypePartialState = "PartialState"
)

// Envelope is the decoded shape of one inbound frame. Only the fields for
// the frame's type are populated; everything else stays zero.
type Envelope struct {
	Type      string          `json:"type"`
	FullState json.RawMessage `json:"fullState,omitempty"`
	Patches   []WirePatch     `json:"patches,omitempty"`
}

// WirePatch is a single raw patch operation as it appears on the wire.
type WirePatch struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// DecodeEnvelope parses a frame. Frames that are not JSON objects with a
// type field are rejected.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decoding frame: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("frame has no type")
	}
	return env, nil
}

// Document decodes a Welcome frame's full state.
func (e Envelope) Document() (statedoc.Document, error) {
	if e.Type != TypeWelcome {
		return nil, fmt.Errorf("not a %s frame: %s", TypeWelcome, e.Type)
	}
	var doc statedoc.Document
	if err := json.Unmarshal(e.FullState, &doc); err != nil {
		return nil, fmt.Errorf("decoding full state: %w", err)
	}
	return doc, nil
}

// StatePatches converts a PartialState frame's wire patches into applier
// patches, preserving order. Unparseable ops are dropped and reported.
func (e Envelope) StatePatches() ([]statedoc.Patch, []error) {
	patches := make([]statedoc.Patch, 0, len(e.Patches))
	var dropped []error
	for i, wp := range e.Patches {
		var op statedoc.Op
		if err := op.UnmarshalText([]byte(wp.Op)); err != nil {
			dropped = append(dropped, fmt.Errorf("patch %d: %w", i, err))
			continue
		}
		p := statedoc.Patch{Op: op, Path: statedoc.ParsePointer(wp.Path)}
		if len(wp.Value) > 0 {
			if err := json.Unmarshal(wp.Value, &p.Value); err != nil {
				dropped = append(dropped, fmt.Errorf("patch %d value: %w", i, err))
				continue
			}
		}
		patches = append(patches, p)
	}
	return patches, dropped
}
