package events

import (
	"encoding/json"
	"time"
)

// Chat lifecycle events. Every event carries session_id so the websocket
// layer can route it to the right viewers.

// NewQueryAccepted fires as soon as the user turn lands in the transcript,
// before any engine work starts.
func NewQueryAccepted(sessionID, query string) BaseEvent {
	return BaseEvent{
		Type: "QUERY_ACCEPTED",
		Data: map[string]interface{}{
			"session_id": sessionID,
			"query":      query,
		},
		OccurredAt: time.Now(),
	}
}

// NewAnswerReady fires when the assistant turn has been persisted.
func NewAnswerReady(sessionID string, elapsedMs int64) BaseEvent {
	return BaseEvent{
		Type: "ANSWER_READY",
		Data: map[string]interface{}{
			"session_id": sessionID,
			"elapsed_ms": elapsedMs,
		},
		OccurredAt: time.Now(),
	}
}

// NewQueryFailed fires when a query errored and the fallback answer was
// persisted instead. The reason is for live viewers only; the transcript
// never records it.
func NewQueryFailed(sessionID, reason string, elapsedMs int64) BaseEvent {
	return BaseEvent{
		Type: "QUERY_FAILED",
		Data: map[string]interface{}{
			"session_id": sessionID,
			"reason":     reason,
			"elapsed_ms": elapsedMs,
		},
		OccurredAt: time.Now(),
	}
}

// NewPipelineReinitialized fires after an explicit invalidate-and-rebuild
// completed. Session-independent; the hub broadcasts it.
func NewPipelineReinitialized(elapsedMs int64) BaseEvent {
	return BaseEvent{
		Type: "PIPELINE_REINITIALIZED",
		Data: map[string]interface{}{
			"elapsed_ms": elapsedMs,
		},
		OccurredAt: time.Now(),
	}
}

// Marshal serializes an event into the wire envelope shared by the bus and
// the websocket layer.
func Marshal(event Event) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type":        event.EventType(),
		"data":        event.Payload(),
		"occurred_at": event.Timestamp(),
	})
}
