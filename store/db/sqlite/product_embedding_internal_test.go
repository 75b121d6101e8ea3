package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBLOBRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 3, 0}
	got, err := blobToFloat32Array(float32ArrayToBLOB(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, got)

	_, err = blobToFloat32Array([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0, cosineDistance([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 1, cosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, 2, cosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 1.0, cosineDistance([]float32{0, 0}, []float32{1, 0}))
}
