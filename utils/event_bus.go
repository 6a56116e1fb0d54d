package utils

import (
	"sync"
	"time"
)

// StageEvent is one telemetry record from a pipeline stage. The analysis
// stages stay pure; the orchestrator publishes these around them.
type StageEvent struct {
	Type      string         // e.g. "stage.completed", "stage.failed"
	Stage     string         // parser, schema, semantic, patterns, narrator, composer
	Dataset   string         // dataset ID when known
	Duration  time.Duration  // stage wall time
	Payload   map[string]any // stage-specific facts (row counts, viz counts)
	Timestamp time.Time
}

// StageEmitter is the capability handed to the pipeline orchestrator.
// A nil emitter is valid and drops everything.
type StageEmitter interface {
	Emit(event StageEvent)
}

// EventHandler handles published stage events
type EventHandler func(StageEvent)

// EventBus manages event publication and subscription
type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
}

// NewEventBus creates an event bus
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

// Subscribe registers a handler for an event type. The empty type
// subscribes to every event.
func (eb *EventBus) Subscribe(eventType string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

// Emit publishes an event synchronously to matching handlers. Handlers are
// expected to be fast; anything slow should hand off internally.
func (eb *EventBus) Emit(event StageEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	eb.mu.RLock()
	handlers := append([]EventHandler{}, eb.handlers[event.Type]...)
	handlers = append(handlers, eb.handlers[""]...)
	eb.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// LoggingHandler returns a handler that writes stage events to the logger
func LoggingHandler(logger *Logger) EventHandler {
	return func(event StageEvent) {
		logger.Debug("pipeline stage event",
			String("type", event.Type),
			String("stage", event.Stage),
			String("dataset", event.Dataset),
			Float("duration_ms", float64(event.Duration.Milliseconds())))
	}
}
