package router

import (
	"encoding/json"
	"fmt"

	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
)

// SavedState is the persisted form of a back stack. Configs are ordered
// head to tail and Active indexes the entry that was shown.
type SavedState struct {
	Configs []json.RawMessage `json:"configs"`
	Active  int               `json:"active"`
}

// Decode parses the saved configurations, dropping every entry above
// Active. An Active outside the saved range selects the tail.
func (s SavedState) Decode() ([]screen.Config, error) {
	if len(s.Configs) == 0 {
		return nil, ErrEmptyReset
	}
	last := s.Active
	if last < 0 || last >= len(s.Configs) {
		last = len(s.Configs) - 1
	}

	configs := make([]screen.Config, 0, last+1)
	for i, raw := range s.Configs[:last+1] {
		cfg, err := screen.Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("saved entry %d: %w", i, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// SaveState captures the current stack. Children are not saved; they are
// rebuilt from their configurations on restore.
func (n *Navigator[C]) SaveState() (SavedState, error) {
	snap := n.Snapshot()
	saved := SavedState{
		Configs: make([]json.RawMessage, 0, snap.Len()),
		Active:  snap.Len() - 1,
	}
	for _, e := range snap.Entries {
		raw, err := screen.Marshal(e.Config)
		if err != nil {
			return SavedState{}, err
		}
		saved.Configs = append(saved.Configs, raw)
	}
	return saved, nil
}

// Restore builds a navigator from saved state. Every entry is constructed
// through the factory, head to tail, before the first snapshot exists.
// opts.Initial is ignored.
func Restore[C any](factory FactoryFunc[C], saved SavedState, opts Options) (*Navigator[C], error) {
	configs, err := saved.Decode()
	if err != nil {
		return nil, &NavigationError{Op: "restore", Err: err}
	}
	opts.Initial = configs
	return New(factory, opts)
}

// RestoreState replaces the stack of a live navigator with saved state,
// emitting a single snapshot.
func (n *Navigator[C]) RestoreState(saved SavedState) error {
	configs, err := saved.Decode()
	if err != nil {
		return &NavigationError{Op: "restore", From: kindOf(n.Active().Config), Err: err}
	}
	return n.Reset(configs...)
}
