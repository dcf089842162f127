package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewInteractionRecorded(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e := NewInteractionRecorded("s1", "search", map[string]interface{}{"query": "scooter"}, at)

	assert.Equal(t, "interaction.recorded", e.EventType())
	assert.Equal(t, "s1", e.Payload()["session_id"])
	assert.Equal(t, "2026-03-01T10:00:00Z", e.Payload()["timestamp"])
	assert.Equal(t, at, e.Timestamp())
}

func TestProductIDFromPayload(t *testing.T) {
	id, ok := ProductIDFromPayload(map[string]interface{}{"product_id": float64(42)})
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = ProductIDFromPayload(map[string]interface{}{"product_id": "42"})
	assert.False(t, ok)

	_, ok = ProductIDFromPayload(map[string]interface{}{})
	assert.False(t, ok)
}
