// Package snapshot defines the serialization-agnostic wire shape produced
// when an encounter closes: encounter metadata, the render-delay tracker,
// every script and external tracker keyed by identity string, and the
// sketch parameters needed to interpret bin indices without recomputing
// them.
package snapshot

import (
	"time"

	"github.com/Sumatoshi-tech/longtail/pkg/sketch"
	"github.com/Sumatoshi-tech/longtail/pkg/tracker"
)

// Kind distinguishes the host event that opened an encounter.
type Kind string

const (
	KindRaid    Kind = "raid"
	KindDungeon Kind = "dungeon"
	KindManual  Kind = "manual"
)

// EncounterMeta carries the host-supplied identity of one encounter. Most
// fields are optional: a manual encounter has neither an ID nor a success
// flag.
type EncounterMeta struct {
	Kind      Kind      `json:"kind" yaml:"kind"`
	StartTime time.Time `json:"start_time" yaml:"start_time"`
	EndTime   time.Time `json:"end_time" yaml:"end_time"`

	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Difficulty string `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	GroupSize  int    `json:"group_size,omitempty" yaml:"group_size,omitempty"`
	Success    *bool  `json:"success,omitempty" yaml:"success,omitempty"`

	MapID string `json:"map_id,omitempty" yaml:"map_id,omitempty"`
}

// TrackerExport is the wire shape of one tracker's accumulated state,
// identical in content to tracker.Export but given an explicit, stable
// JSON encoding independent of the tracker package's internal layout.
type TrackerExport struct {
	Commits   uint64       `json:"commits" yaml:"commits"`
	Calls     uint64       `json:"calls" yaml:"calls"`
	TotalTime float64      `json:"total_time" yaml:"total_time"`
	Sketch    SketchExport `json:"sketch" yaml:"sketch"`
	Dependent bool         `json:"dependent" yaml:"dependent"`
}

// SketchExport is the wire shape of a tiered sketch's state. Bins is
// omitted entirely when the sketch never overflowed into the histogram
// tier, matching scenario 1 and 2's "bins absent" expectation.
type SketchExport struct {
	Count        uint64    `json:"count" yaml:"count"`
	TrivialCount uint64    `json:"trivial_count" yaml:"trivial_count"`
	Bins         []uint64  `json:"bins,omitempty" yaml:"bins,omitempty"`
	Outliers     []float64 `json:"outliers" yaml:"outliers"`
}

// FromTrackerExport converts a tracker.Export into its wire shape.
func FromTrackerExport(e tracker.Export) TrackerExport {
	return TrackerExport{
		Commits:   e.Commits,
		Calls:     e.Calls,
		TotalTime: e.TotalTime,
		Dependent: e.Dependent,
		Sketch:    fromSketchExport(e.Sketch),
	}
}

func fromSketchExport(e sketch.Export) SketchExport {
	outliers := e.Outliers
	if outliers == nil {
		outliers = []float64{}
	}

	return SketchExport{
		Count:        e.Count,
		TrivialCount: e.TrivialCount,
		Bins:         e.Bins,
		Outliers:     outliers,
	}
}

// SketchParams is the wire shape of sketch.Params, re-declared here so the
// snapshot format does not depend on the sketch package's field tags.
type SketchParams struct {
	Alpha         float64 `json:"alpha" yaml:"alpha"`
	Gamma         float64 `json:"gamma" yaml:"gamma"`
	BinOffset     int     `json:"bin_offset" yaml:"bin_offset"`
	TrivialCutoff float64 `json:"trivial_cutoff" yaml:"trivial_cutoff"`
}

// FromSketchParams converts sketch.Params into its wire shape.
func FromSketchParams(p sketch.Params) SketchParams {
	return SketchParams{
		Alpha:         p.Alpha,
		Gamma:         p.Gamma,
		BinOffset:     p.BinOffset,
		TrivialCutoff: p.TrivialCutoff,
	}
}

// Snapshot is the full value built when an encounter closes. It is handed
// to the persistence layer as-is; the persistence layer owns serializing
// and compressing it.
type Snapshot struct {
	Encounter   EncounterMeta            `json:"encounter" yaml:"encounter"`
	RenderDelay TrackerExport            `json:"render_delay" yaml:"render_delay"`
	Scripts     map[string]TrackerExport `json:"scripts" yaml:"scripts"`
	Externals   map[string]TrackerExport `json:"externals" yaml:"externals"`
	SketchParam SketchParams             `json:"sketch_params" yaml:"sketch_params"`
}
