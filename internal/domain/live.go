package domain

import "time"

// SessionStatus is the lifecycle status of a live session.
type SessionStatus string

const (
	SessionStatusLive  SessionStatus = "LIVE"
	SessionStatusEnded SessionStatus = "ENDED"
)

// LiveSession is a single-broadcaster live stream. At most one session
// is LIVE system-wide at a time.
type LiveSession struct {
	ID            string        `json:"id"`
	BroadcasterID string        `json:"broadcasterId"`
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	Status        SessionStatus `json:"status"`
	StartTime     time.Time     `json:"startTime"`
	EndTime       *time.Time    `json:"endTime,omitempty"`
	ViewerCount   int           `json:"viewerCount"`
}

// User is the slice of the user entity the live gateway needs.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// ChatMessage is a persisted live-chat message.
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// StartSessionRequest is the payload to start a live session.
type StartSessionRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// ListSessionsRequest carries pagination for session history.
type ListSessionsRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"limit"`
}
