package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCurrentVersion(t *testing.T) {
	assert.Equal(t, DevVersion, GetCurrentVersion("dev"))
	assert.Equal(t, DevVersion, GetCurrentVersion("demo"))
	assert.Equal(t, Version, GetCurrentVersion("prod"))
}

func TestIsVersionGreaterOrEqualThan(t *testing.T) {
	assert.True(t, IsVersionGreaterOrEqualThan("0.2.0", "0.1.0"))
	assert.True(t, IsVersionGreaterOrEqualThan("0.1.0", "0.1.0"))
	assert.True(t, IsVersionGreaterOrEqualThan("v1.0.0", "0.9.9"))
	assert.False(t, IsVersionGreaterOrEqualThan("0.1.0", "0.10.0"))
}

func TestString(t *testing.T) {
	old := GitCommit
	t.Cleanup(func() { GitCommit = old })

	GitCommit = "unknown"
	assert.Equal(t, Version, String())

	GitCommit = "0123456789abcdef"
	assert.Equal(t, Version+"-01234567", String())
}
