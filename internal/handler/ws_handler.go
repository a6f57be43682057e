package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Tapedynamics/Twittich/internal/auth"
	"github.com/Tapedynamics/Twittich/internal/domain"
	"github.com/Tapedynamics/Twittich/internal/hub"
	"github.com/Tapedynamics/Twittich/internal/service"
	pkglog "github.com/Tapedynamics/Twittich/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin checking is handled by the fronting proxy
	},
}

// WSHandler is the connection gateway: it authenticates the handshake,
// creates the client, and routes its messages to the live service.
type WSHandler struct {
	hub           *hub.Hub
	service       service.LiveService
	authenticator *auth.Authenticator
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(h *hub.Hub, svc service.LiveService, authenticator *auth.Authenticator) *WSHandler {
	return &WSHandler{
		hub:           h,
		service:       svc,
		authenticator: authenticator,
	}
}

// HandleWebSocket authenticates the handshake and upgrades the
// connection. No event handler is reachable for a connection that
// failed authentication: the request is rejected before the upgrade.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	l := pkglog.Ctx(r.Context())

	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
	}

	user, err := h.authenticator.Authenticate(r.Context(), token)
	if err != nil {
		l.Warn().Err(err).Str(pkglog.FieldClientIP, r.RemoteAddr).Msg("websocket handshake rejected")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	clientID := uuid.New().String()
	client := &hub.Client{
		ID:      clientID,
		Hub:     h.hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Session: domain.NewSession(clientID, user),
	}

	// Clean up presence and signaling state when the transport closes.
	client.SetDisconnectHandler(func(c *hub.Client) {
		ctx := context.Background()
		if err := h.service.HandleDisconnect(ctx, c); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, c.ID).Msg("disconnect handler error")
		}
	})

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	l := pkglog.L()

	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid message format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.MsgTypeJoinLive:
		var msg domain.SessionMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid join-live message"))
			return
		}
		if err := h.service.HandleJoinLive(ctx, client, msg.SessionID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID).Msg("join-live failed")
		}

	case domain.MsgTypeLeaveLive:
		var msg domain.SessionMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid leave-live message"))
			return
		}
		if err := h.service.HandleLeaveLive(ctx, client, msg.SessionID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID).Msg("leave-live failed")
		}

	case domain.MsgTypeLiveChatMessage:
		var msg domain.ChatMessageIn
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid live-chat-message"))
			return
		}
		if err := h.service.HandleChatMessage(ctx, client, msg.SessionID, msg.Message); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID).Msg("live-chat-message failed")
		}

	case domain.MsgTypeBroadcasterReady:
		var msg domain.SessionMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid broadcaster-ready message"))
			return
		}
		if err := h.service.HandleBroadcasterReady(ctx, client, msg.SessionID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID).Msg("broadcaster-ready failed")
		}

	case domain.MsgTypeBroadcasterStopped:
		var msg domain.SessionMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid broadcaster-stopped message"))
			return
		}
		if err := h.service.HandleBroadcasterStopped(ctx, client, msg.SessionID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID).Msg("broadcaster-stopped failed")
		}

	case domain.MsgTypeRequestStream:
		var msg domain.SessionMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid request-stream message"))
			return
		}
		if err := h.service.HandleRequestStream(ctx, client, msg.SessionID); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID).Msg("request-stream failed")
		}

	case domain.MsgTypeWebRTCOffer:
		var msg domain.SignalMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid webrtc-offer message"))
			return
		}
		if err := h.service.HandleWebRTCOffer(ctx, client, &msg); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID).Msg("webrtc-offer failed")
		}

	case domain.MsgTypeWebRTCAnswer:
		var msg domain.SignalMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid webrtc-answer message"))
			return
		}
		if err := h.service.HandleWebRTCAnswer(ctx, client, &msg); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID).Msg("webrtc-answer failed")
		}

	case domain.MsgTypeWebRTCICECandidate:
		var msg domain.SignalMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid webrtc-ice-candidate message"))
			return
		}
		if err := h.service.HandleICECandidate(ctx, client, &msg); err != nil {
			l.Error().Err(err).Str(pkglog.FieldConnID, client.ID).Msg("webrtc-ice-candidate failed")
		}

	case domain.MsgTypePing:
		client.SendMessage(map[string]string{"type": domain.MsgTypePong})

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "unknown message type"))
	}
}
