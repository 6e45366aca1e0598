// Package engine orchestrates the frame clock, tracker registry, and
// encounter lifecycle that sit on top of pkg/tracker and pkg/sketch: the
// pieces of the measurement engine that have process-wide state rather
// than living inside one tracker.
package engine

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/longtail/pkg/sketch"
	"github.com/Sumatoshi-tech/longtail/pkg/sketchpool"
	"github.com/Sumatoshi-tech/longtail/pkg/tracker"
)

// ErrIdentityCollision is returned when two trackers are registered under
// the same identity string in the same group. The core refuses to
// overwrite an existing registration.
var ErrIdentityCollision = errors.New("engine: identity already registered")

// ScriptType distinguishes the callback kind a frame-slot tracker was
// created for (e.g. OnUpdate vs OnEvent); it is opaque to the engine
// beyond being part of a tracker's identity.
type ScriptType string

// frameSlotKey identifies a tracker by host-frame handle and script type.
// Subsequent SetScript rebindings of the same (handle, script_type) slot
// intentionally share the same tracker — lambdas with identical bodies
// have distinct identities, so identity-of-callable cannot be the key.
type frameSlotKey struct {
	handle     uintptr
	scriptType ScriptType
}

// FrameClock maintains the monotonic render index and its render_delay
// tracker.
type FrameClock struct {
	frameIndex  uint64
	renderDelay *tracker.ScriptTracker
}

// newFrameClock creates a FrameClock whose render_delay tracker is backed
// by sk and gated by gate.
func newFrameClock(gate tracker.Gate, sk *sketch.TieredSketch) *FrameClock {
	return &FrameClock{
		renderDelay: tracker.New(gate, sk, false, 0),
	}
}

// OnRender increments the frame index and records elapsedMS into the
// render_delay tracker.
func (fc *FrameClock) OnRender(elapsedMS float64) {
	fc.frameIndex++
	fc.renderDelay.Record(fc.frameIndex, elapsedMS)
}

// FrameIndex returns the current render index.
func (fc *FrameClock) FrameIndex() uint64 {
	return fc.frameIndex
}

// Registry owns every tracker the engine has ever created, split into the
// two groups a snapshot needs: host-frame scripts and named externals.
type Registry struct {
	gate tracker.Gate
	pool *sketchpool.Pool

	alpha           float64
	outlierCapacity int

	frameSlots map[frameSlotKey]*tracker.ScriptTracker
	scripts    map[string]*tracker.ScriptTracker
	externals  map[string]*tracker.ScriptTracker
}

// RegistryParams bundles the construction-time knobs shared by every tracker the
// registry creates.
type RegistryParams struct {
	Gate            tracker.Gate
	Pool            *sketchpool.Pool
	Alpha           float64
	OutlierCapacity int
}

// NewRegistry creates an empty Registry.
func NewRegistry(p RegistryParams) *Registry {
	return &Registry{
		gate:            p.Gate,
		pool:            p.Pool,
		alpha:           p.Alpha,
		outlierCapacity: p.OutlierCapacity,
		frameSlots:      make(map[frameSlotKey]*tracker.ScriptTracker),
		scripts:         make(map[string]*tracker.ScriptTracker),
		externals:       make(map[string]*tracker.ScriptTracker),
	}
}

// GetFrameTracker returns the tracker for (handle, scriptType), creating
// it (and registering it under identity in the scripts group) on first
// call. Subsequent calls with the same (handle, scriptType) — including
// across SetScript rebindings on the host side — return the same tracker.
func (r *Registry) GetFrameTracker(handle uintptr, scriptType ScriptType, identity string, frameIndex uint64) (*tracker.ScriptTracker, error) {
	key := frameSlotKey{handle: handle, scriptType: scriptType}

	if tr, ok := r.frameSlots[key]; ok {
		return tr, nil
	}

	tr, err := r.newTracker(false, frameIndex)
	if err != nil {
		return nil, err
	}

	if err := r.register(identity, tr, groupScripts); err != nil {
		return nil, err
	}

	r.frameSlots[key] = tr

	return tr, nil
}

// GetNamedTracker returns the tracker for key, creating it (and
// registering it in the externals group) on first call.
func (r *Registry) GetNamedTracker(key string, dependent bool, frameIndex uint64) (*tracker.ScriptTracker, error) {
	if tr, ok := r.externals[key]; ok {
		return tr, nil
	}

	tr, err := r.newTracker(dependent, frameIndex)
	if err != nil {
		return nil, err
	}

	if err := r.register(key, tr, groupExternals); err != nil {
		return nil, err
	}

	return tr, nil
}

type group int

const (
	groupScripts group = iota
	groupExternals
)

func (r *Registry) register(identity string, tr *tracker.ScriptTracker, g group) error {
	target := r.scripts
	if g == groupExternals {
		target = r.externals
	}

	if _, exists := target[identity]; exists {
		return fmt.Errorf("%w: %s", ErrIdentityCollision, identity)
	}

	target[identity] = tr

	return nil
}

func (r *Registry) newTracker(dependent bool, frameIndex uint64) (*tracker.ScriptTracker, error) {
	params, err := sketch.NewParams(r.alpha)
	if err != nil {
		return nil, err
	}

	sk, err := sketch.New(params, r.pool, r.outlierCapacity)
	if err != nil {
		return nil, err
	}

	return tracker.New(r.gate, sk, dependent, frameIndex), nil
}

// Scripts returns the identity-to-tracker map for host-frame trackers.
func (r *Registry) Scripts() map[string]*tracker.ScriptTracker {
	return r.scripts
}

// Externals returns the identity-to-tracker map for named trackers.
func (r *Registry) Externals() map[string]*tracker.ScriptTracker {
	return r.externals
}

// Count returns the total number of trackers registered across both
// groups, used for the active-tracker gauge.
func (r *Registry) Count() int {
	return len(r.scripts) + len(r.externals)
}

// ResetAll resets every tracker in both groups to frameIndex, used when an
// encounter closes.
func (r *Registry) ResetAll(frameIndex uint64) {
	for _, tr := range r.scripts {
		tr.Reset(frameIndex)
	}

	for _, tr := range r.externals {
		tr.Reset(frameIndex)
	}
}
