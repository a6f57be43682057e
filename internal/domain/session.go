package domain

import (
	"sync"
	"time"
)

// Session is the per-connection state of one authenticated WebSocket
// client. User identity is cached once at connect time and never taken
// from message payloads afterwards.
type Session struct {
	ID                 string
	UserID             string
	Username           string
	IsAdmin            bool
	WatchingSessionID  string // live session this connection joined as viewer
	BroadcastSessionID string // set only while acting as broadcaster
	ConnectedAt        time.Time
	LastActiveAt       time.Time
	mu                 sync.RWMutex
}

// NewSession creates a session for an authenticated connection.
func NewSession(connID string, user *User) *Session {
	now := time.Now()
	return &Session{
		ID:           connID,
		UserID:       user.ID,
		Username:     user.Username,
		IsAdmin:      user.IsAdmin,
		ConnectedAt:  now,
		LastActiveAt: now,
	}
}

// GetUserID returns the authenticated user ID.
func (s *Session) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID
}

// GetUsername returns the cached username.
func (s *Session) GetUsername() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Username
}

// JoinLive records the live session this connection is watching.
func (s *Session) JoinLive(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WatchingSessionID = sessionID
	s.LastActiveAt = time.Now()
}

// LeaveLive clears the watched live session.
func (s *Session) LeaveLive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WatchingSessionID = ""
	s.LastActiveAt = time.Now()
}

// Watching returns the live session this connection joined, if any.
func (s *Session) Watching() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.WatchingSessionID
}

// SetBroadcasting marks this connection as the broadcaster for a session.
func (s *Session) SetBroadcasting(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BroadcastSessionID = sessionID
	s.LastActiveAt = time.Now()
}

// ClearBroadcasting releases the broadcaster role.
func (s *Session) ClearBroadcasting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BroadcastSessionID = ""
	s.LastActiveAt = time.Now()
}

// Broadcasting returns the session this connection broadcasts for, if any.
func (s *Session) Broadcasting() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BroadcastSessionID
}

// UpdateActivity updates the last active timestamp.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
