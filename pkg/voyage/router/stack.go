package router

import (
	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
)

// Entry is one position of the back stack: a configuration and the single
// live child built for it. The key is unique per entry, so two entries with
// equal configurations are still told apart.
type Entry[C any] struct {
	Key    string
	Config screen.Config
	Child  C

	scope *lifecycle.Scope
}

// Scope returns the lifecycle scope bound to this entry.
func (e Entry[C]) Scope() *lifecycle.Scope {
	return e.scope
}

// Snapshot is an immutable view of the back stack after a completed
// mutation. The last entry is the active one.
type Snapshot[C any] struct {
	Entries []Entry[C]
	Version uint64 // increases by one per completed mutation
}

// Active returns the entry currently shown.
func (s Snapshot[C]) Active() Entry[C] {
	return s.Entries[len(s.Entries)-1]
}

// Len returns the number of entries.
func (s Snapshot[C]) Len() int {
	return len(s.Entries)
}

// Configs returns the configurations head to tail.
func (s Snapshot[C]) Configs() []screen.Config {
	configs := make([]screen.Config, len(s.Entries))
	for i, e := range s.Entries {
		configs[i] = e.Config
	}
	return configs
}

// Backstack returns every entry below the active one.
func (s Snapshot[C]) Backstack() []Entry[C] {
	return s.Entries[:len(s.Entries)-1]
}

// stack stores the entries. It is owned by Navigator and never exposed;
// observers only ever see Snapshot copies.
type stack[C any] struct {
	entries []Entry[C]
}

func (s *stack[C]) push(e Entry[C]) {
	s.entries = append(s.entries, e)
}

// pop removes and returns the top entry.
// Returns nil if the stack is empty.
func (s *stack[C]) pop() *Entry[C] {
	if len(s.entries) == 0 {
		return nil
	}
	entry := s.entries[len(s.entries)-1]
	s.entries[len(s.entries)-1] = Entry[C]{}
	s.entries = s.entries[:len(s.entries)-1]
	return &entry
}

// peek returns the top entry without removing it.
// Returns nil if the stack is empty.
func (s *stack[C]) peek() *Entry[C] {
	if len(s.entries) == 0 {
		return nil
	}
	return &s.entries[len(s.entries)-1]
}

func (s *stack[C]) len() int {
	return len(s.entries)
}

// clear removes all entries and returns them head to tail.
func (s *stack[C]) clear() []Entry[C] {
	old := s.entries
	s.entries = nil
	return old
}

func (s *stack[C]) snapshot(version uint64) Snapshot[C] {
	entries := make([]Entry[C], len(s.entries))
	copy(entries, s.entries)
	return Snapshot[C]{Entries: entries, Version: version}
}
