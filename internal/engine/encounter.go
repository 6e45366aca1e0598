package engine

import (
	"time"

	"github.com/Sumatoshi-tech/longtail/pkg/snapshot"
)

// State is the encounter lifecycle's current phase.
type State int

const (
	StateIdle State = iota
	StateActive
	StateClosing
)

// RaidInfo carries the host-supplied identity of a raid encounter.
type RaidInfo struct {
	ID         string
	Name       string
	Difficulty string
	GroupSize  int
	Success    *bool
}

// DungeonInfo carries the host-supplied identity of a dungeon encounter.
type DungeonInfo struct {
	MapID string
}

// Encounter tracks the currently active (or idle) measurement session.
// Dungeon encounters take precedence over raids: a raid start arriving
// while a dungeon is active is ignored, per spec.
type Encounter struct {
	state State
	kind  snapshot.Kind
	raid  RaidInfo
	dgn   DungeonInfo

	startFrame uint64
	startTime  time.Time
}

// NewEncounter creates an idle Encounter.
func NewEncounter() *Encounter {
	return &Encounter{state: StateIdle}
}

// State returns the current lifecycle phase.
func (e *Encounter) State() State {
	return e.state
}

// Active reports whether the encounter is currently recording. This is the
// gate every tracker consults on record.
func (e *Encounter) Active() bool {
	return e.state == StateActive
}

// StartRaid transitions Idle -> Active(raid). Ignored (IgnoredStart) if
// already active — a dungeon in progress is never preempted by a raid
// start.
func (e *Encounter) StartRaid(info RaidInfo, frameIndex uint64, startTime time.Time) bool {
	if e.state == StateActive {
		return false
	}

	e.state = StateActive
	e.kind = snapshot.KindRaid
	e.raid = info
	e.startFrame = frameIndex
	e.startTime = startTime

	return true
}

// StartDungeon transitions Idle -> Active(dungeon). Ignored if already
// active.
func (e *Encounter) StartDungeon(info DungeonInfo, frameIndex uint64, startTime time.Time) bool {
	if e.state == StateActive {
		return false
	}

	e.state = StateActive
	e.kind = snapshot.KindDungeon
	e.dgn = info
	e.startFrame = frameIndex
	e.startTime = startTime

	return true
}

// StartManual transitions Idle -> Active(manual). Ignored if already
// active.
func (e *Encounter) StartManual(frameIndex uint64, startTime time.Time) bool {
	if e.state == StateActive {
		return false
	}

	e.state = StateActive
	e.kind = snapshot.KindManual
	e.startFrame = frameIndex
	e.startTime = startTime

	return true
}

// Stop transitions Active -> Closing. Returns false if not currently
// active (a stop with no matching start is ignored).
func (e *Encounter) Stop() bool {
	if e.state != StateActive {
		return false
	}

	e.state = StateClosing

	return true
}

// FinishClose transitions Closing -> Idle, ready for the next encounter.
func (e *Encounter) FinishClose() {
	e.state = StateIdle
}

// Meta builds the wire-shape metadata for the currently (or just-closed)
// active encounter, stamping endTime as the closing time.
func (e *Encounter) Meta(endTime time.Time) snapshot.EncounterMeta {
	meta := snapshot.EncounterMeta{Kind: e.kind, StartTime: e.startTime, EndTime: endTime}

	switch e.kind {
	case snapshot.KindRaid:
		meta.ID = e.raid.ID
		meta.Name = e.raid.Name
		meta.Difficulty = e.raid.Difficulty
		meta.GroupSize = e.raid.GroupSize
		meta.Success = e.raid.Success
	case snapshot.KindDungeon:
		meta.MapID = e.dgn.MapID
	case snapshot.KindManual:
	}

	return meta
}
