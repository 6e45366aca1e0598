// Package store holds the bounded, append-only history of completed
// encounters. It is the local, directly-callable stand-in for the
// external snapshot-storage collaborator spec.md treats as out of scope:
// real hosts hand the serialized, compressed bytes to their own
// persistence layer, but this module needs something concrete for the CLI
// demo path and for tests to assert against.
package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/Sumatoshi-tech/longtail/pkg/snapshot"
)

// DefaultRetention is the number of most-recent recordings kept unless
// overridden by configuration.
const DefaultRetention = 50

// Recording is the persisted artifact of one completed encounter: its
// metadata, the engine version that produced it, and the snapshot
// serialized and compressed to opaque bytes by a Codec.
type Recording struct {
	ID            uuid.UUID
	Encounter     snapshot.EncounterMeta
	EngineVersion string
	OpaqueBytes   []byte
	StoredAt      time.Time
}

// Store is a FIFO-bounded, append-only list of Recordings. The oldest
// recording is dropped before an insert that would exceed capacity. Store
// is not safe for concurrent use; the engine that owns it is
// single-threaded.
type Store struct {
	capacity   int
	recordings []Recording
}

// New creates a Store retaining at most capacity recordings.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultRetention
	}

	return &Store{
		capacity:   capacity,
		recordings: make([]Recording, 0, capacity),
	}
}

// Append adds r to the store, evicting the oldest recording first if the
// store is already at capacity.
func (s *Store) Append(r Recording) {
	if len(s.recordings) >= s.capacity {
		s.recordings = s.recordings[1:]
	}

	s.recordings = append(s.recordings, r)
}

// Len returns the number of recordings currently retained.
func (s *Store) Len() int {
	return len(s.recordings)
}

// All returns the retained recordings in insertion order, oldest first.
// The returned slice is a copy; mutating it does not affect the store.
func (s *Store) All() []Recording {
	out := make([]Recording, len(s.recordings))
	copy(out, s.recordings)

	return out
}

// Latest returns the most recently appended recording, if any.
func (s *Store) Latest() (Recording, bool) {
	if len(s.recordings) == 0 {
		return Recording{}, false
	}

	return s.recordings[len(s.recordings)-1], true
}
