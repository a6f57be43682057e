package kafka

import "context"

// StreamEvent records a stream lifecycle change. The notification
// pipeline consumes these to fan out "X went live" alerts to followers.
type StreamEvent struct {
	Type          string `json:"type"` // "stream_started" | "stream_stopped"
	SessionID     string `json:"session_id"`
	BroadcasterID string `json:"broadcaster_id"`
	Reason        string `json:"reason,omitempty"` // "explicit" | "disconnect"
	Timestamp     int64  `json:"timestamp"`
}

// Event types
const (
	EventStreamStarted = "stream_started"
	EventStreamStopped = "stream_stopped"
)

// Stop reasons
const (
	ReasonExplicit   = "explicit"
	ReasonDisconnect = "disconnect"
)

// StreamEventProducer defines the interface for producing stream
// lifecycle events.
type StreamEventProducer interface {
	ProduceStreamStarted(ctx context.Context, sessionID, broadcasterID string) error
	ProduceStreamStopped(ctx context.Context, sessionID, broadcasterID, reason string) error
	Close() error
}
