package version_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/longtail/pkg/version"
)

func TestEngineVersion_CombinesVersionAndCommit(t *testing.T) {
	t.Parallel()

	orig, origCommit := version.Version, version.Commit
	defer func() { version.Version, version.Commit = orig, origCommit }()

	version.Version = "1.2.3"
	version.Commit = "abc123"

	require.Equal(t, "1.2.3+abc123", version.EngineVersion())
}

func TestEngineVersion_DefaultsAreStable(t *testing.T) {
	t.Parallel()

	require.Contains(t, version.EngineVersion(), "+")
}
