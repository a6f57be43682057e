package repository

import (
	"context"
	"errors"

	"github.com/Tapedynamics/Twittich/internal/domain"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)

// UserRepository resolves users for the connection gateway.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// LiveRepository is the durable side of the live-session feature:
// session metadata, viewer counters, and chat history.
type LiveRepository interface {
	Create(ctx context.Context, session *domain.LiveSession) error
	GetByID(ctx context.Context, id string) (*domain.LiveSession, error)
	FindActive(ctx context.Context) (*domain.LiveSession, error)
	List(ctx context.Context, page, pageSize int) ([]domain.LiveSession, int, error)
	End(ctx context.Context, id string) error
	UpdateViewerCount(ctx context.Context, id string, count int) error

	CreateChatMessage(ctx context.Context, sessionID, userID, message string) error
	ListChatMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)
}
