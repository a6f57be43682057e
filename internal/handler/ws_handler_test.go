package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tapedynamics/Twittich/internal/auth"
	"github.com/Tapedynamics/Twittich/internal/config"
	"github.com/Tapedynamics/Twittich/internal/domain"
	"github.com/Tapedynamics/Twittich/internal/hub"
	"github.com/Tapedynamics/Twittich/internal/repository"
	"github.com/Tapedynamics/Twittich/internal/service"
	"github.com/Tapedynamics/Twittich/pkg/jwt"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

// stubLiveService records which handlers the gateway dispatched to.
type stubLiveService struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubLiveService) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

func (s *stubLiveService) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubLiveService) HandleJoinLive(ctx context.Context, c *hub.Client, sessionID string) error {
	s.record("join-live:" + sessionID)
	return nil
}
func (s *stubLiveService) HandleLeaveLive(ctx context.Context, c *hub.Client, sessionID string) error {
	s.record("leave-live:" + sessionID)
	return nil
}
func (s *stubLiveService) HandleChatMessage(ctx context.Context, c *hub.Client, sessionID, message string) error {
	s.record("chat:" + sessionID + ":" + message)
	return nil
}
func (s *stubLiveService) HandleBroadcasterReady(ctx context.Context, c *hub.Client, sessionID string) error {
	s.record("broadcaster-ready:" + sessionID)
	return nil
}
func (s *stubLiveService) HandleBroadcasterStopped(ctx context.Context, c *hub.Client, sessionID string) error {
	s.record("broadcaster-stopped:" + sessionID)
	return nil
}
func (s *stubLiveService) HandleRequestStream(ctx context.Context, c *hub.Client, sessionID string) error {
	s.record("request-stream:" + sessionID)
	return nil
}
func (s *stubLiveService) HandleWebRTCOffer(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error {
	s.record("offer:" + msg.TargetID)
	return nil
}
func (s *stubLiveService) HandleWebRTCAnswer(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error {
	s.record("answer:" + msg.TargetID)
	return nil
}
func (s *stubLiveService) HandleICECandidate(ctx context.Context, c *hub.Client, msg *domain.SignalMessage) error {
	s.record("ice:" + msg.TargetID)
	return nil
}
func (s *stubLiveService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	s.record("disconnect")
	return nil
}

var _ service.LiveService = (*stubLiveService)(nil)

func newTestGateway(t *testing.T) (*httptest.Server, *jwt.Manager, *stubLiveService) {
	t.Helper()

	wsHub := hub.NewHub(config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 65536,
	})
	go wsHub.Run()

	jwtManager := jwt.NewManager("test-secret", time.Hour, "twittich")
	users := &stubUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Username: "alice"},
	}}
	authenticator := auth.NewAuthenticator(jwtManager, users)

	svc := &stubLiveService{}
	wsHandler := NewWSHandler(wsHub, svc, authenticator)

	server := httptest.NewServer(http.HandlerFunc(wsHandler.HandleWebSocket))
	t.Cleanup(server.Close)

	return server, jwtManager, svc
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func waitForCall(t *testing.T, svc *stubLiveService, want string) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		for _, call := range svc.recorded() {
			if call == want {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("call %q never dispatched; recorded %v", want, svc.recorded())
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	server, _, _ := newTestGateway(t)

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestHandshakeRejectsInvalidToken(t *testing.T) {
	server, _, _ := newTestGateway(t)

	resp, err := http.Get(server.URL + "?token=garbage")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestHandshakeRejectsUnknownUser(t *testing.T) {
	server, jwtManager, _ := newTestGateway(t)

	token, err := jwtManager.Generate("no-such-user")
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(server.URL + "?token=" + token)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestPingPong(t *testing.T) {
	server, jwtManager, _ := newTestGateway(t)

	token, _ := jwtManager.Generate("u1")
	conn := dial(t, server, token)

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatal(err)
	}
	if m := readMessage(t, conn); m["type"] != "pong" {
		t.Fatalf("got %v, want pong", m)
	}
}

func TestMessagesDispatchedToService(t *testing.T) {
	server, jwtManager, svc := newTestGateway(t)

	token, _ := jwtManager.Generate("u1")
	conn := dial(t, server, token)

	writes := []map[string]string{
		{"type": "join-live", "sessionId": "s1"},
		{"type": "live-chat-message", "sessionId": "s1", "message": "hi"},
		{"type": "request-stream", "sessionId": "s1"},
		{"type": "webrtc-offer", "sessionId": "s1", "targetId": "v1"},
		{"type": "leave-live", "sessionId": "s1"},
	}
	for _, w := range writes {
		if err := conn.WriteJSON(w); err != nil {
			t.Fatal(err)
		}
	}

	waitForCall(t, svc, "join-live:s1")
	waitForCall(t, svc, "chat:s1:hi")
	waitForCall(t, svc, "request-stream:s1")
	waitForCall(t, svc, "offer:v1")
	waitForCall(t, svc, "leave-live:s1")
}

func TestUnknownMessageTypeReturnsError(t *testing.T) {
	server, jwtManager, _ := newTestGateway(t)

	token, _ := jwtManager.Generate("u1")
	conn := dial(t, server, token)

	if err := conn.WriteJSON(map[string]string{"type": "time-travel"}); err != nil {
		t.Fatal(err)
	}
	m := readMessage(t, conn)
	if m["type"] != domain.MsgTypeError || m["code"] != domain.ErrCodeBadRequest {
		t.Fatalf("got %v, want BAD_REQUEST error", m)
	}
}

func TestMalformedJSONReturnsError(t *testing.T) {
	server, jwtManager, _ := newTestGateway(t)

	token, _ := jwtManager.Generate("u1")
	conn := dial(t, server, token)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	m := readMessage(t, conn)
	if m["type"] != domain.MsgTypeError {
		t.Fatalf("got %v, want error message", m)
	}
}

func TestDisconnectTriggersCleanup(t *testing.T) {
	server, jwtManager, svc := newTestGateway(t)

	token, _ := jwtManager.Generate("u1")
	conn := dial(t, server, token)

	conn.Close()
	waitForCall(t, svc, "disconnect")
}
