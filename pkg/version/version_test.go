package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	origVersion, origCommit, origTime := Version, CommitHash, BuildTime
	t.Cleanup(func() { Version, CommitHash, BuildTime = origVersion, origCommit, origTime })

	Version, CommitHash, BuildTime = "1.4.0", "3f2a9c1", "2024-05-01T12:00:00Z"

	assert.Equal(t, "linkmond version 1.4.0 (commit: 3f2a9c1, built at: 2024-05-01T12:00:00Z)", String())
}
