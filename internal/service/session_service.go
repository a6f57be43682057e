package service

import (
	"context"
	"errors"
	"time"

	"github.com/Tapedynamics/Twittich/internal/cache"
	"github.com/Tapedynamics/Twittich/internal/domain"
	"github.com/Tapedynamics/Twittich/internal/repository"
	pkglog "github.com/Tapedynamics/Twittich/pkg/log"
)

type sessionService struct {
	live     repository.LiveRepository
	cache    cache.SessionCache
	cacheTTL time.Duration
	hub      Hub
}

// NewSessionService creates a new SessionService instance.
func NewSessionService(live repository.LiveRepository, sc cache.SessionCache, cacheTTL time.Duration, h Hub) SessionService {
	return &sessionService{
		live:     live,
		cache:    sc,
		cacheTTL: cacheTTL,
		hub:      h,
	}
}

// StartSession creates a new LIVE session. Only admins may broadcast,
// and only one session may be LIVE system-wide.
func (s *sessionService) StartSession(ctx context.Context, user *domain.User, req *domain.StartSessionRequest) (*domain.LiveSession, error) {
	l := pkglog.Ctx(ctx)

	if !user.IsAdmin {
		return nil, ErrNotAdmin
	}

	_, err := s.live.FindActive(ctx)
	if err == nil {
		return nil, ErrSessionActive
	}
	if !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, err
	}

	session := &domain.LiveSession{
		BroadcasterID: user.ID,
		Title:         req.Title,
		Description:   req.Description,
	}
	if err := s.live.Create(ctx, session); err != nil {
		return nil, err
	}

	if err := s.cache.SetActive(ctx, session, s.cacheTTL); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldSessionID, session.ID).Msg("failed to cache active session")
	}

	s.hub.BroadcastAll(&domain.LiveStartedMessage{
		Type:    domain.MsgTypeLiveStarted,
		Session: session,
	})

	l.Info().Str(pkglog.FieldSessionID, session.ID).Str(pkglog.FieldUserID, user.ID).Msg("live session started")
	return session, nil
}

// EndSession marks a session ENDED. Only its broadcaster may end it.
func (s *sessionService) EndSession(ctx context.Context, user *domain.User, sessionID string) error {
	l := pkglog.Ctx(ctx)

	session, err := s.live.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.BroadcasterID != user.ID {
		return ErrNotBroadcaster
	}

	if err := s.live.End(ctx, sessionID); err != nil {
		return err
	}

	if err := s.cache.InvalidateActive(ctx); err != nil {
		l.Warn().Err(err).Msg("failed to invalidate active session cache")
	}

	// Global announcement reaches room members and browsers still on
	// the feed alike.
	s.hub.BroadcastAll(&domain.LiveEndedMessage{
		Type:      domain.MsgTypeLiveEnded,
		SessionID: sessionID,
	})

	l.Info().Str(pkglog.FieldSessionID, sessionID).Msg("live session ended")
	return nil
}

// GetCurrentSession returns the LIVE session, or nil when none exists.
func (s *sessionService) GetCurrentSession(ctx context.Context) (*domain.LiveSession, error) {
	l := pkglog.Ctx(ctx)

	session, err := s.cache.GetActive(ctx)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Msg("active session cache read failed, falling back to db")
	}

	session, err = s.live.FindActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.cache.SetActive(ctx, session, s.cacheTTL); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldSessionID, session.ID).Msg("failed to cache active session")
	}
	return session, nil
}

// ListSessions returns session history, newest first.
func (s *sessionService) ListSessions(ctx context.Context, page, pageSize int) ([]domain.LiveSession, int, error) {
	return s.live.List(ctx, page, pageSize)
}

// GetChatHistory returns the persisted chat log of a session.
func (s *sessionService) GetChatHistory(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	if _, err := s.live.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.live.ListChatMessages(ctx, sessionID, limit)
}
