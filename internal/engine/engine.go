package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sumatoshi-tech/longtail/internal/observability"
	"github.com/Sumatoshi-tech/longtail/pkg/config"
	"github.com/Sumatoshi-tech/longtail/pkg/sketch"
	"github.com/Sumatoshi-tech/longtail/pkg/sketchpool"
	"github.com/Sumatoshi-tech/longtail/pkg/snapshot"
	"github.com/Sumatoshi-tech/longtail/pkg/store"
	"github.com/Sumatoshi-tech/longtail/pkg/tracker"
	"github.com/Sumatoshi-tech/longtail/pkg/version"
)

// maxTrackedObservationMS bounds the bin vector: observations above this
// are clamped into the last bin (BinOverflow) rather than growing the
// vector, per the error taxonomy's clamp policy.
const maxTrackedObservationMS = 60_000.0

// pendingSnapshot is the one in-flight snapshot the deferred ticker knows
// how to retry. The engine keeps at most one: a second encounter cannot
// close before the host drains the ticker, since both run on the host's
// single thread.
type pendingSnapshot struct {
	snap snapshot.Snapshot
}

// Engine is the top-level orchestrator: it owns the frame clock, the
// tracker registry, the current encounter, and the deferred snapshot
// write-back path. Every exported method is meant to be called from the
// host's single render/event thread; Engine does no locking of its own
// except around the pending-snapshot handoff to Tick.
type Engine struct {
	clock       *FrameClock
	registry    *Registry
	encounter   *Encounter
	pool        *sketchpool.Pool
	sketchParam snapshot.SketchParams

	codec *store.Codec
	rec   *store.Store

	logger   *slog.Logger
	metrics  *observability.EngineMetrics
	liveness *LivenessGauge

	pending              *pendingSnapshot
	exhaustedAtLastCheck uint64

	mu sync.Mutex
}

// Params bundles everything Engine needs to construct its subsystems.
type Params struct {
	Config   config.Config
	Codec    *store.Codec
	Logger   *slog.Logger
	Metrics  *observability.EngineMetrics
	Registry prometheus.Registerer // optional; nil skips the liveness gauge
}

// New builds an Engine from p.Config. The sketch pool is sized and
// preallocated once here, per the resource budget's "zero allocation
// after warm-up" requirement: every tracker's sketch shares one pool,
// since every tracker is built from the same alpha and thus the same bin
// vector length.
func New(p Params) (*Engine, error) {
	params, err := sketch.NewParams(p.Config.Sketch.Alpha)
	if err != nil {
		return nil, err
	}

	vectorLen := params.MaxBinIndex(maxTrackedObservationMS) + 1
	if vectorLen < 1 {
		vectorLen = 1
	}

	pool := sketchpool.New(vectorLen, p.Config.Pool.Prealloc)

	enc := NewEncounter()

	reg := NewRegistry(RegistryParams{
		Gate:            enc.Active,
		Pool:            pool,
		Alpha:           p.Config.Sketch.Alpha,
		OutlierCapacity: p.Config.Sketch.OutlierCapacity,
	})

	clockSketch, err := sketch.New(params, pool, p.Config.Sketch.OutlierCapacity)
	if err != nil {
		return nil, err
	}

	var liveness *LivenessGauge

	if p.Registry != nil {
		liveness, err = NewLivenessGauge(p.Registry)
		if err != nil {
			return nil, err
		}
	}

	return &Engine{
		clock:       newFrameClock(enc.Active, clockSketch),
		registry:    reg,
		encounter:   enc,
		pool:        pool,
		sketchParam: snapshot.FromSketchParams(params),
		codec:       p.Codec,
		rec:         store.New(p.Config.Snapshot.Retention),
		logger:      p.Logger,
		metrics:     p.Metrics,
		liveness:    liveness,
	}, nil
}

// Close marks the engine's liveness gauge down, if one was configured.
// Safe to call on an Engine built without a Registry.
func (e *Engine) Close() {
	if e.liveness != nil {
		e.liveness.Down()
	}
}

// ActiveTrackerCount implements observability.EngineGauges.
func (e *Engine) ActiveTrackerCount() int64 {
	return int64(e.registry.Count())
}

// SnapshotQueueDepth implements observability.EngineGauges.
func (e *Engine) SnapshotQueueDepth() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending == nil {
		return 0
	}

	return 1
}

// OnRender advances the frame clock by one render and records elapsedMS
// into the render_delay tracker.
func (e *Engine) OnRender(elapsedMS float64) {
	e.clock.OnRender(elapsedMS)
}

// RegisterFrameTracker resolves the tracker for (handle, scriptType),
// creating it under identity on first call.
func (e *Engine) RegisterFrameTracker(handle uintptr, scriptType ScriptType, identity string) (*tracker.ScriptTracker, error) {
	return e.registry.GetFrameTracker(handle, scriptType, identity, e.clock.FrameIndex())
}

// RegisterNamedTracker resolves the tracker for key, creating it under key
// in the externals group on first call.
func (e *Engine) RegisterNamedTracker(key string, dependent bool) (*tracker.ScriptTracker, error) {
	return e.registry.GetNamedTracker(key, dependent, e.clock.FrameIndex())
}

// Record forwards delta_ms into tr at the current frame index. This is the
// hot path: no allocation, no logging, one gate read inside tr.Record.
func (e *Engine) Record(tr *tracker.ScriptTracker, deltaMS float64) {
	tr.Record(e.clock.FrameIndex(), deltaMS)
}

// StartRaid opens a raid encounter. Ignored if an encounter is already
// active (IgnoredStart), including when a dungeon is in progress.
func (e *Engine) StartRaid(info RaidInfo) {
	if !e.encounter.StartRaid(info, e.clock.FrameIndex(), nowTime()) {
		e.logIgnoredStart("raid")
		return
	}

	e.logger.Debug("encounter started", "kind", "raid", "id", info.ID)
}

// StartDungeon opens a dungeon encounter. Ignored if already active.
func (e *Engine) StartDungeon(info DungeonInfo) {
	if !e.encounter.StartDungeon(info, e.clock.FrameIndex(), nowTime()) {
		e.logIgnoredStart("dungeon")
		return
	}

	e.logger.Debug("encounter started", "kind", "dungeon", "map_id", info.MapID)
}

// StartManual opens a manually-triggered encounter. Ignored if already
// active.
func (e *Engine) StartManual() {
	if !e.encounter.StartManual(e.clock.FrameIndex(), nowTime()) {
		e.logIgnoredStart("manual")
		return
	}

	e.logger.Debug("encounter started", "kind", "manual")
}

func (e *Engine) logIgnoredStart(kind string) {
	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		e.logger.Debug("ignored start: encounter already active", "kind", kind)
	}
}

// Stop closes the current encounter: it builds the snapshot, enqueues it
// for the deferred ticker, and resets every tracker. A stop with no
// matching active encounter is ignored.
func (e *Engine) Stop() {
	if !e.encounter.Stop() {
		return
	}

	snap := e.buildSnapshot()

	e.mu.Lock()
	e.pending = &pendingSnapshot{snap: snap}
	e.mu.Unlock()

	e.registry.ResetAll(e.clock.FrameIndex())
	e.clock.renderDelay.Reset(e.clock.FrameIndex())
	e.encounter.FinishClose()
	e.logger.Debug("encounter stopped", "kind", snap.Encounter.Kind)

	exhausted := e.pool.ExhaustedCount()
	delta := exhausted - e.exhaustedAtLastCheck

	if e.metrics != nil {
		e.metrics.RecordEncounterClosed(context.Background())
		e.metrics.RecordPoolExhaustion(context.Background(), int64(delta))
	}

	e.exhaustedAtLastCheck = exhausted

	if delta > 0 {
		e.logger.Warn("bin-vector pool exhausted during encounter", "exhaustions", delta, "total_exhaustions", exhausted)
	}
}

func (e *Engine) buildSnapshot() snapshot.Snapshot {
	scripts := make(map[string]snapshot.TrackerExport, len(e.registry.Scripts()))

	for identity, tr := range e.registry.Scripts() {
		if !tr.ShouldExport() {
			continue
		}

		scripts[identity] = snapshot.FromTrackerExport(tr.Export())
	}

	externals := make(map[string]snapshot.TrackerExport, len(e.registry.Externals()))

	for identity, tr := range e.registry.Externals() {
		if !tr.ShouldExport() {
			continue
		}

		externals[identity] = snapshot.FromTrackerExport(tr.Export())
	}

	return snapshot.Snapshot{
		Encounter:   e.encounter.Meta(nowTime()),
		RenderDelay: snapshot.FromTrackerExport(e.clock.renderDelay.Export()),
		Scripts:     scripts,
		Externals:   externals,
		SketchParam: e.sketchParam,
	}
}

// Tick drives the deferred snapshot write-back. It is called roughly once
// a second by the host. hostInCombat reports whether the host is
// currently in a time-sensitive section; Tick bails out without touching
// pending state in that case (SnapshotDeferred). Otherwise the ticker
// cancels itself (clears pending) before attempting the write, so a
// failure cannot loop (SnapshotFailed: drop, log once, continue).
func (e *Engine) Tick(hostInCombat bool) {
	if hostInCombat {
		return
	}

	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	if pending == nil {
		return
	}

	opaque, err := e.codec.Encode(pending.snap)
	if err != nil {
		e.logger.Warn("snapshot serialization failed, recording dropped", "error", err)
		return
	}

	e.rec.Append(store.Recording{
		ID:            uuid.New(),
		Encounter:     pending.snap.Encounter,
		EngineVersion: version.EngineVersion(),
		OpaqueBytes:   opaque,
		StoredAt:      nowTime(),
	})
}

// Recordings returns every recording currently retained by the store.
func (e *Engine) Recordings() []store.Recording {
	return e.rec.All()
}

// PoolFootprintBytes estimates the bin-vector pool's preallocated memory.
func (e *Engine) PoolFootprintBytes() uint64 {
	return e.pool.FootprintBytes()
}

func nowTime() time.Time {
	return time.Now()
}
