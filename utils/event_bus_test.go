package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusTypedSubscription(t *testing.T) {
	bus := NewEventBus()

	var got []StageEvent
	bus.Subscribe("stage.completed", func(e StageEvent) { got = append(got, e) })

	bus.Emit(StageEvent{Type: "stage.completed", Stage: "parser"})
	bus.Emit(StageEvent{Type: "stage.failed", Stage: "parser"})

	require.Len(t, got, 1)
	assert.Equal(t, "parser", got[0].Stage)
}

func TestEventBusWildcardSubscription(t *testing.T) {
	bus := NewEventBus()

	count := 0
	bus.Subscribe("", func(StageEvent) { count++ })

	bus.Emit(StageEvent{Type: "stage.completed"})
	bus.Emit(StageEvent{Type: "query.completed"})

	assert.Equal(t, 2, count)
}

func TestEventBusStampsTimestamp(t *testing.T) {
	bus := NewEventBus()

	var got StageEvent
	bus.Subscribe("stage.completed", func(e StageEvent) { got = e })

	before := time.Now()
	bus.Emit(StageEvent{Type: "stage.completed"})

	assert.False(t, got.Timestamp.IsZero())
	assert.False(t, got.Timestamp.Before(before.Add(-time.Second)))
}

func TestEventBusKeepsExplicitTimestamp(t *testing.T) {
	bus := NewEventBus()

	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var got StageEvent
	bus.Subscribe("stage.completed", func(e StageEvent) { got = e })

	bus.Emit(StageEvent{Type: "stage.completed", Timestamp: stamp})
	assert.Equal(t, stamp, got.Timestamp)
}
