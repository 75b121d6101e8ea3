package util

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenUUID(t *testing.T) {
	id := GenUUID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, GenUUID())
}

func TestGenShortID(t *testing.T) {
	id := GenShortID()
	assert.Len(t, id, 22)
	assert.NotEqual(t, id, GenShortID())
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Equal(t, "abc", RequestID(WithRequestID(ctx, "abc")))
}

func TestHasPrefixes(t *testing.T) {
	assert.True(t, HasPrefixes("/admin/products", "/chat", "/admin"))
	assert.False(t, HasPrefixes("/assets/app.js", "/chat", "/admin"))
	assert.False(t, HasPrefixes("/chat"))
}
