package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/longtail/internal/engine"
	"github.com/Sumatoshi-tech/longtail/pkg/sketchpool"
)

func alwaysOn() bool { return true }

func newTestRegistry(t *testing.T) *engine.Registry {
	t.Helper()

	return engine.NewRegistry(engine.RegistryParams{
		Gate:            alwaysOn,
		Pool:            sketchpool.New(8, 4),
		Alpha:           0.05,
		OutlierCapacity: 10,
	})
}

func TestGetFrameTracker_SameSlotReturnsSameTracker(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)

	t1, err := r.GetFrameTracker(0x1, "OnUpdate", "@addon/path:OnUpdate", 0)
	require.NoError(t, err)

	t2, err := r.GetFrameTracker(0x1, "OnUpdate", "@addon/path:OnUpdate", 5)
	require.NoError(t, err)

	assert.Same(t, t1, t2)
	assert.Equal(t, 1, r.Count())
}

func TestGetFrameTracker_DifferentScriptTypeIsDistinctTracker(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)

	t1, err := r.GetFrameTracker(0x1, "OnUpdate", "@addon/path:OnUpdate", 0)
	require.NoError(t, err)

	t2, err := r.GetFrameTracker(0x1, "OnEvent", "@addon/path:OnEvent", 0)
	require.NoError(t, err)

	assert.NotSame(t, t1, t2)
	assert.Equal(t, 2, r.Count())
}

func TestGetFrameTracker_IdentityCollisionAcrossDistinctSlots(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)

	_, err := r.GetFrameTracker(0x1, "OnUpdate", "@addon/path:OnUpdate", 0)
	require.NoError(t, err)

	_, err = r.GetFrameTracker(0x2, "OnUpdate", "@addon/path:OnUpdate", 0)
	require.ErrorIs(t, err, engine.ErrIdentityCollision)
}

func TestGetNamedTracker_SameKeyReturnsSameTracker(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)

	t1, err := r.GetNamedTracker("lib:Foo", true, 0)
	require.NoError(t, err)

	t2, err := r.GetNamedTracker("lib:Foo", true, 3)
	require.NoError(t, err)

	assert.Same(t, t1, t2)
	assert.True(t, t1.Dependent())
	assert.Equal(t, 1, r.Count())
}

func TestResetAll_ResetsEveryGroup(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)

	frameTr, err := r.GetFrameTracker(0x1, "OnUpdate", "@addon/path:OnUpdate", 1)
	require.NoError(t, err)
	frameTr.Record(1, 5.0)

	namedTr, err := r.GetNamedTracker("lib:Foo", false, 1)
	require.NoError(t, err)
	namedTr.Record(1, 3.0)

	r.ResetAll(10)

	assert.False(t, frameTr.ShouldExport())
	assert.False(t, namedTr.ShouldExport())
}
