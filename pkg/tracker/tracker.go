// Package tracker implements the per-callable accumulator that coalesces
// many within-render calls into one commit before it ever reaches a
// sketch.
package tracker

import "github.com/Sumatoshi-tech/longtail/pkg/sketch"

// Gate reports whether the engine is currently recording. record is a
// no-op when the gate returns false; the tracker reads it once per call,
// never caching the result.
type Gate func() bool

// ScriptTracker accumulates one render's worth of time for a single
// instrumented callable, committing exactly one sample per render into its
// sketch. record is the hot path: it must stay a handful of comparisons
// and adds with no allocation.
type ScriptTracker struct {
	gate Gate
	sk   *sketch.TieredSketch

	commits   uint64
	calls     uint64
	totalTime float64

	pendingFrameTime  float64
	pendingFrameCalls uint64
	lastFrameIndex    uint64
	haveFrame         bool

	dependent bool
}

// New creates a ScriptTracker backed by sk. gate is consulted on every
// record call; frameIndex is the current render index at construction
// time, matching reset's contract.
func New(gate Gate, sk *sketch.TieredSketch, dependent bool, frameIndex uint64) *ScriptTracker {
	return &ScriptTracker{
		gate:           gate,
		sk:             sk,
		dependent:      dependent,
		lastFrameIndex: frameIndex,
	}
}

// Record adds delta_ms to the pending frame total. If frameIndex differs
// from the last observed frame, the previous frame's pending total is
// committed first. A no-op when the gate reports the engine is not
// recording.
func (t *ScriptTracker) Record(frameIndex uint64, deltaMS float64) {
	if !t.gate() {
		return
	}

	if t.haveFrame && frameIndex != t.lastFrameIndex {
		t.commit()
	}

	t.lastFrameIndex = frameIndex
	t.haveFrame = true
	t.pendingFrameTime += deltaMS
	t.pendingFrameCalls++
}

// commit rolls the pending frame's calls and time into the running
// counters and, provided the pending total is positive, pushes it into the
// sketch as one sample and counts one commit — a render in which record
// was never called, or was called only with non-positive deltas,
// contributes no commit (invariant: commits counts frames with
// frame_time > 0).
func (t *ScriptTracker) commit() {
	if t.pendingFrameCalls == 0 {
		return
	}

	t.calls += t.pendingFrameCalls
	t.totalTime += t.pendingFrameTime

	if t.pendingFrameTime > 0 {
		t.sk.Push(t.pendingFrameTime)
		t.commits++
	}

	t.pendingFrameTime = 0
	t.pendingFrameCalls = 0
}

// Export flushes any pending frame, then returns the tracker's current
// state. Calling Export repeatedly with no intervening Record returns
// equal values each time.
func (t *ScriptTracker) Export() Export {
	t.commit()

	return Export{
		Commits:   t.commits,
		Calls:     t.calls,
		TotalTime: t.totalTime,
		Sketch:    t.sk.Export(),
		Dependent: t.dependent,
	}
}

// ShouldExport reports whether, after flushing any pending frame, this
// tracker has ever committed. Trackers with zero commits are omitted from
// a snapshot rather than serialized as empty noise.
func (t *ScriptTracker) ShouldExport() bool {
	t.commit()

	return t.commits > 0
}

// Reset zeros every accumulator and re-anchors the tracker at frameIndex,
// ready for the next encounter.
func (t *ScriptTracker) Reset(frameIndex uint64) {
	t.commits = 0
	t.calls = 0
	t.totalTime = 0
	t.pendingFrameTime = 0
	t.pendingFrameCalls = 0
	t.lastFrameIndex = frameIndex
	t.haveFrame = false
	t.sk.Reset()
}

// Dependent reports whether this tracker's samples are assumed dependent
// on other trackers sampled in the same render.
func (t *ScriptTracker) Dependent() bool {
	return t.dependent
}

// Export is a value-semantic snapshot of a ScriptTracker, matching the
// wire-level tracker_export shape.
type Export struct {
	Commits   uint64
	Calls     uint64
	TotalTime float64
	Sketch    sketch.Export
	Dependent bool
}
