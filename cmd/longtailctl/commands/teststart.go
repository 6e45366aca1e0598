package commands

import (
	"math/rand/v2"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/longtail/internal/engine"
	"github.com/Sumatoshi-tech/longtail/pkg/persist"
	"github.com/Sumatoshi-tech/longtail/pkg/store"
)

// NewTestStartCommand runs a synthetic manual encounter end to end: it
// starts one, drives a short render loop with randomized per-callable
// timings through two trackers, stops the encounter, drains the deferred
// snapshot ticker once, and prints a summary of what was recorded. This is
// the CLI's stand-in for a real host's teststart/teststop pair, since a
// one-shot process has no session to hold open between separate verbs.
func NewTestStartCommand() *cobra.Command {
	var renders int

	cmd := &cobra.Command{
		Use:   "teststart",
		Short: "Run a synthetic manual encounter and report its snapshot",
		RunE: func(_ *cobra.Command, _ []string) error {
			eng, _, err := newEngine()
			if err != nil {
				return err //nolint:wrapcheck
			}

			runSyntheticEncounter(eng, renders)

			return nil
		},
	}

	cmd.Flags().IntVar(&renders, "renders", 120, "number of synthetic render ticks to simulate")

	return cmd
}

func runSyntheticEncounter(eng *engine.Engine, renders int) {
	printf("starting manual encounter\n")
	eng.StartManual()

	frameUpdate, err := eng.RegisterFrameTracker(0x1001, "OnUpdate", "@demo/addon.lua:OnUpdate")
	if err != nil {
		printf("register frame tracker failed: %v\n", err)
		return
	}

	auraHandler, err := eng.RegisterNamedTracker("@demo/addon.lua:AURA_APPLIED", true)
	if err != nil {
		printf("register named tracker failed: %v\n", err)
		return
	}

	for i := 0; i < renders; i++ {
		eng.OnRender(16.6)

		eng.Record(frameUpdate, 0.1+rand.Float64()*0.3) //nolint:gosec

		if i%7 == 0 {
			eng.Record(auraHandler, 0.05+rand.Float64()*2.5) //nolint:gosec
		}
	}

	printf("stopping encounter after %d renders\n", renders)
	eng.Stop()

	printf("draining snapshot ticker\n")
	eng.Tick(false)

	recs := eng.Recordings()
	if len(recs) == 0 {
		printf("no recording produced (snapshot was dropped; see log)\n")
		return
	}

	latest := recs[len(recs)-1]
	printf("recorded encounter %s (kind=%s, engine=%s, %d bytes opaque)\n",
		latest.ID, latest.Encounter.Kind, latest.EngineVersion, len(latest.OpaqueBytes))

	printSnapshotYAML(latest)
}

// printSnapshotYAML decodes the just-stored recording and renders it as
// YAML for an operator reading the CLI's output — spec.md §6 calls for
// "human-readable diagnostics; no structured output" on this surface, so
// this is a log-reading aid, not a machine contract.
func printSnapshotYAML(rec store.Recording) {
	codec := store.NewCodec(persist.NewJSONCodec())

	snap, err := codec.Decode(rec.OpaqueBytes)
	if err != nil {
		printf("could not decode recording for display: %v\n", err)
		return
	}

	out, err := yaml.Marshal(snap)
	if err != nil {
		printf("could not render snapshot as yaml: %v\n", err)
		return
	}

	printf("--- snapshot ---\n%s", out)
}
