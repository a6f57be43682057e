package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Tapedynamics/Twittich/internal/config"
	"github.com/Tapedynamics/Twittich/internal/domain"
	"github.com/Tapedynamics/Twittich/internal/hub"
	"github.com/Tapedynamics/Twittich/internal/kafka"
	"github.com/Tapedynamics/Twittich/internal/repository"
	pkglog "github.com/Tapedynamics/Twittich/pkg/log"
)

// liveRoom is the multicast group name of a live session.
func liveRoom(sessionID string) string {
	return "live-" + sessionID
}

type liveService struct {
	hub      Hub
	live     repository.LiveRepository
	producer kafka.StreamEventProducer

	tracker *viewerTracker
	signal  *signalState
	limiter *chatLimiter

	maxMessageLen int
}

// NewLiveService creates a new LiveService instance. producer may be
// nil; stream lifecycle events are then skipped.
func NewLiveService(
	h Hub,
	live repository.LiveRepository,
	producer kafka.StreamEventProducer,
	chatCfg config.ChatConfig,
) LiveService {
	return &liveService{
		hub:           h,
		live:          live,
		producer:      producer,
		tracker:       newViewerTracker(),
		signal:        newSignalState(),
		limiter:       newChatLimiter(chatCfg.RateLimitWindow, chatCfg.RateLimitMax),
		maxMessageLen: chatCfg.MaxMessageLength,
	}
}

func (s *liveService) HandleJoinLive(ctx context.Context, c *hub.Client, sessionID string) error {
	if sessionID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "missing sessionId"))
	}

	count := s.tracker.add(sessionID, c.ID)
	s.hub.JoinRoom(c, liveRoom(sessionID))
	c.Session.JoinLive(sessionID)

	s.persistViewerCount(ctx, sessionID, count)
	return s.broadcastViewerCount(sessionID, count)
}

func (s *liveService) HandleLeaveLive(ctx context.Context, c *hub.Client, sessionID string) error {
	if sessionID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "missing sessionId"))
	}

	count := s.tracker.remove(sessionID, c.ID)
	s.hub.LeaveRoom(c, liveRoom(sessionID))
	c.Session.LeaveLive()

	s.persistViewerCount(ctx, sessionID, count)
	return s.broadcastViewerCount(sessionID, count)
}

func (s *liveService) HandleChatMessage(ctx context.Context, c *hub.Client, sessionID, message string) error {
	if sessionID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "missing sessionId"))
	}

	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "message is empty"))
	}
	if utf8.RuneCountInString(trimmed) > s.maxMessageLen {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "message is too long"))
	}

	userID := c.Session.GetUserID()
	if !s.limiter.allow(userID) {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeRateLimited, "too many messages, slow down"))
	}

	// The message is stored under the connection's authenticated user,
	// never a client-supplied identity.
	if err := s.live.CreateChatMessage(ctx, sessionID, userID, trimmed); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldSessionID, sessionID).Str(pkglog.FieldUserID, userID).Msg("failed to persist chat message, relaying anyway")
	}

	return s.hub.BroadcastToRoom(liveRoom(sessionID), &domain.ChatMessageOut{
		Type:      domain.MsgTypeLiveChatMessage,
		Username:  c.Session.GetUsername(),
		Message:   trimmed,
		Timestamp: time.Now().UTC(),
	}, "")
}

func (s *liveService) HandleBroadcasterReady(ctx context.Context, c *hub.Client, sessionID string) error {
	if sessionID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "missing sessionId"))
	}

	l := pkglog.Ctx(ctx)

	prev := s.signal.setBroadcaster(sessionID, c.ID)
	if prev != "" && prev != c.ID {
		l.Warn().Str(pkglog.FieldSessionID, sessionID).Str("stale_conn_id", prev).Msg("replacing stale broadcaster link")
	}
	c.Session.SetBroadcasting(sessionID)

	// Tell the room a broadcaster is available.
	if err := s.hub.BroadcastToRoom(liveRoom(sessionID), &domain.BaseMessage{Type: domain.MsgTypeBroadcasterReady}, c.ID); err != nil {
		return err
	}

	// Viewers who joined before the broadcaster was ready never sent a
	// request the broadcaster saw; announce them directly.
	for _, viewerID := range s.tracker.viewerIDs(sessionID) {
		if viewerID == c.ID {
			continue
		}
		if !s.signal.markNotified(sessionID, viewerID) {
			continue
		}
		c.SendMessage(&domain.ViewerJoinedMessage{Type: domain.MsgTypeViewerJoined, ViewerID: viewerID})
	}

	s.produceStreamStarted(ctx, sessionID, c.Session.GetUserID())
	return nil
}

func (s *liveService) HandleBroadcasterStopped(ctx context.Context, c *hub.Client, sessionID string) error {
	if sessionID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "missing sessionId"))
	}

	if !s.signal.releaseBroadcaster(sessionID, c.ID) {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeForbidden, "not the broadcaster for this session"))
	}
	c.Session.ClearBroadcasting()

	if err := s.hub.BroadcastToRoom(liveRoom(sessionID), &domain.BaseMessage{Type: domain.MsgTypeBroadcasterStopped}, c.ID); err != nil {
		return err
	}

	s.produceStreamStopped(ctx, sessionID, c.Session.GetUserID(), kafka.ReasonExplicit)
	return nil
}

func (s *liveService) HandleRequestStream(ctx context.Context, c *hub.Client, sessionID string) error {
	l := pkglog.Ctx(ctx)

	broadcasterID, ok := s.signal.broadcaster(sessionID)
	if !ok {
		// No broadcaster yet; the client retries on a timer.
		l.Debug().Str(pkglog.FieldSessionID, sessionID).Str(pkglog.FieldConnID, c.ID).Msg("request-stream with no broadcaster, dropped")
		return nil
	}

	if !s.signal.markNotified(sessionID, c.ID) {
		l.Debug().Str(pkglog.FieldSessionID, sessionID).Str(pkglog.FieldConnID, c.ID).Msg("duplicate request-stream suppressed")
		return nil
	}

	err := s.hub.SendToClient(broadcasterID, &domain.ViewerJoinedMessage{
		Type:     domain.MsgTypeViewerJoined,
		ViewerID: c.ID,
	})
	if errors.Is(err, hub.ErrClientNotFound) {
		l.Warn().Str(pkglog.FieldSessionID, sessionID).Str("broadcaster_id", broadcasterID).Msg("broadcaster connection gone, viewer-joined dropped")
		return nil
	}
	return err
}

func (s *liveService) HandleWebRTCOffer(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error {
	return s.relay(ctx, c, msg.TargetID, &domain.SignalRelayMessage{
		Type:     domain.MsgTypeWebRTCOffer,
		Offer:    msg.Offer,
		SenderID: c.ID,
	})
}

func (s *liveService) HandleWebRTCAnswer(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error {
	return s.relay(ctx, c, msg.TargetID, &domain.SignalRelayMessage{
		Type:     domain.MsgTypeWebRTCAnswer,
		Answer:   msg.Answer,
		SenderID: c.ID,
	})
}

func (s *liveService) HandleICECandidate(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error {
	out := &domain.SignalRelayMessage{
		Type:      domain.MsgTypeWebRTCICECandidate,
		Candidate: msg.Candidate,
		SenderID:  c.ID,
	}

	// Without a resolved peer, fall back to everyone else in the room.
	if msg.TargetID == "" {
		return s.hub.BroadcastToRoom(liveRoom(msg.SessionID), out, c.ID)
	}
	return s.relay(ctx, c, msg.TargetID, out)
}

// relay delivers an opaque negotiation payload to one connection. A
// missing target is a routing miss, not an error: the peer may have
// disconnected mid-negotiation.
func (s *liveService) relay(ctx context.Context, c *hub.Client, targetID string, out *domain.SignalRelayMessage) error {
	if targetID == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "missing targetId"))
	}

	err := s.hub.SendToClient(targetID, out)
	if errors.Is(err, hub.ErrClientNotFound) {
		l := pkglog.Ctx(ctx)
		l.Debug().Str(pkglog.FieldConnID, c.ID).Str(pkglog.FieldTargetID, targetID).Str("msg_type", out.Type).Msg("signaling target not connected, dropped")
		return nil
	}
	return err
}

func (s *liveService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	for sessionID, count := range s.tracker.removeAll(c.ID) {
		s.persistViewerCount(ctx, sessionID, count)
		s.broadcastViewerCount(sessionID, count)
	}

	s.signal.forgetConn(c.ID)

	// An abrupt broadcaster disconnect counts as a stop.
	if sessionID := c.Session.Broadcasting(); sessionID != "" {
		if s.signal.releaseBroadcaster(sessionID, c.ID) {
			s.hub.BroadcastToRoom(liveRoom(sessionID), &domain.BaseMessage{Type: domain.MsgTypeBroadcasterStopped}, c.ID)
			s.produceStreamStopped(ctx, sessionID, c.Session.GetUserID(), kafka.ReasonDisconnect)
		}
	}

	return nil
}

func (s *liveService) broadcastViewerCount(sessionID string, count int) error {
	return s.hub.BroadcastToRoom(liveRoom(sessionID), &domain.ViewersCountMessage{
		Type:  domain.MsgTypeViewersCount,
		Count: count,
	}, "")
}

// persistViewerCount mirrors the in-memory count to the database. The
// write is best-effort: room membership stays correct even when the
// database is down.
func (s *liveService) persistViewerCount(ctx context.Context, sessionID string, count int) {
	if err := s.live.UpdateViewerCount(ctx, sessionID, count); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldSessionID, sessionID).Int("count", count).Msg("failed to persist viewer count")
	}
}

func (s *liveService) produceStreamStarted(ctx context.Context, sessionID, broadcasterID string) {
	if s.producer == nil {
		return
	}
	if err := s.producer.ProduceStreamStarted(ctx, sessionID, broadcasterID); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldSessionID, sessionID).Msg("failed to produce stream_started event")
	}
}

func (s *liveService) produceStreamStopped(ctx context.Context, sessionID, broadcasterID, reason string) {
	if s.producer == nil {
		return
	}
	if err := s.producer.ProduceStreamStopped(ctx, sessionID, broadcasterID, reason); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldSessionID, sessionID).Msg("failed to produce stream_stopped event")
	}
}
