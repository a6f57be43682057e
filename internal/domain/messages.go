package domain

import (
	"encoding/json"
	"time"
)

// WebSocket event types from client.
const (
	MsgTypeJoinLive           = "join-live"
	MsgTypeLeaveLive          = "leave-live"
	MsgTypeLiveChatMessage    = "live-chat-message"
	MsgTypeBroadcasterReady   = "broadcaster-ready"
	MsgTypeBroadcasterStopped = "broadcaster-stopped"
	MsgTypeRequestStream      = "request-stream"
	MsgTypeWebRTCOffer        = "webrtc-offer"
	MsgTypeWebRTCAnswer       = "webrtc-answer"
	MsgTypeWebRTCICECandidate = "webrtc-ice-candidate"
	MsgTypePing               = "ping"
)

// WebSocket event types to client.
const (
	MsgTypeViewersCount = "viewers-count"
	MsgTypeViewerJoined = "viewer-joined"
	MsgTypeLiveStarted  = "live-started"
	MsgTypeLiveEnded    = "live-ended"
	MsgTypeError        = "error"
	MsgTypePong         = "pong"
)

// BaseMessage is the envelope shared by all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

// SessionMessage covers the events that carry only a session ID
// (join-live, leave-live, broadcaster-ready, broadcaster-stopped,
// request-stream).
type SessionMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// ChatMessageIn is an inbound live chat message. Any user identity in
// the payload is ignored; the server uses the connection's session.
type ChatMessageIn struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// SignalMessage is an inbound WebRTC negotiation message. The payload
// is relayed verbatim and never inspected.
type SignalMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	TargetID  string          `json:"targetId,omitempty"`
}

// Server -> Client messages

// ViewersCountMessage announces the current viewer count of a session.
type ViewersCountMessage struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// ChatMessageOut is a relayed live chat message.
type ChatMessageOut struct {
	Type      string    `json:"type"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ViewerJoinedMessage tells the broadcaster a viewer wants a stream.
type ViewerJoinedMessage struct {
	Type     string `json:"type"`
	ViewerID string `json:"viewerId"`
}

// SignalRelayMessage is an outbound WebRTC negotiation message with the
// sender's connection ID attached.
type SignalRelayMessage struct {
	Type      string          `json:"type"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	SenderID  string          `json:"senderId"`
}

// LiveStartedMessage announces a newly started live session to all
// connected clients.
type LiveStartedMessage struct {
	Type    string       `json:"type"`
	Session *LiveSession `json:"session"`
}

// LiveEndedMessage announces that a live session ended.
type LiveEndedMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// ErrorMessage is sent to the offending client only; the connection
// stays open.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// NewErrorMessage creates a new error message.
func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
