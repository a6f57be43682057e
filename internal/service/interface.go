package service

import (
	"context"
	"errors"

	"github.com/Tapedynamics/Twittich/internal/domain"
	"github.com/Tapedynamics/Twittich/internal/hub"
)

var (
	ErrNotAdmin       = errors.New("only admins can start live sessions")
	ErrSessionActive  = errors.New("a live session is already active")
	ErrNotBroadcaster = errors.New("not the broadcaster of this session")
)

// Hub is the room-based multicast primitive the services publish
// through. *hub.Hub implements it; tests substitute a recording fake.
type Hub interface {
	JoinRoom(c *hub.Client, roomID string)
	LeaveRoom(c *hub.Client, roomID string)
	BroadcastToRoom(roomID string, message interface{}, exclude string) error
	BroadcastAll(message interface{}) error
	SendToClient(clientID string, message interface{}) error
}

// LiveService handles all real-time events of authenticated WebSocket
// connections: presence, chat, and WebRTC signaling.
type LiveService interface {
	HandleJoinLive(ctx context.Context, c *hub.Client, sessionID string) error
	HandleLeaveLive(ctx context.Context, c *hub.Client, sessionID string) error
	HandleChatMessage(ctx context.Context, c *hub.Client, sessionID, message string) error
	HandleBroadcasterReady(ctx context.Context, c *hub.Client, sessionID string) error
	HandleBroadcasterStopped(ctx context.Context, c *hub.Client, sessionID string) error
	HandleRequestStream(ctx context.Context, c *hub.Client, sessionID string) error
	HandleWebRTCOffer(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error
	HandleWebRTCAnswer(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error
	HandleICECandidate(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error
	HandleDisconnect(ctx context.Context, c *hub.Client) error
}

// SessionService is the HTTP-facing lifecycle of live sessions.
type SessionService interface {
	StartSession(ctx context.Context, user *domain.User, req *domain.StartSessionRequest) (*domain.LiveSession, error)
	EndSession(ctx context.Context, user *domain.User, sessionID string) error
	GetCurrentSession(ctx context.Context) (*domain.LiveSession, error)
	ListSessions(ctx context.Context, page, pageSize int) ([]domain.LiveSession, int, error)
	GetChatHistory(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)
}
