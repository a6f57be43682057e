package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tapedynamics/Twittich/internal/cache"
	"github.com/Tapedynamics/Twittich/internal/domain"
	"github.com/Tapedynamics/Twittich/internal/repository"
)

// fakeSessionRepo backs the lifecycle tests with a single in-memory
// session.
type fakeSessionRepo struct {
	fakeLiveRepo
	active  *domain.LiveSession
	created *domain.LiveSession
	ended   []string
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *domain.LiveSession) error {
	session.ID = "generated-id"
	session.Status = domain.SessionStatusLive
	session.StartTime = time.Now()
	r.created = session
	r.active = session
	return nil
}

func (r *fakeSessionRepo) FindActive(ctx context.Context) (*domain.LiveSession, error) {
	if r.active == nil {
		return nil, repository.ErrSessionNotFound
	}
	return r.active, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*domain.LiveSession, error) {
	if r.active != nil && r.active.ID == id {
		return r.active, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (r *fakeSessionRepo) End(ctx context.Context, id string) error {
	r.ended = append(r.ended, id)
	r.active = nil
	return nil
}

// fakeSessionCache is an in-memory SessionCache.
type fakeSessionCache struct {
	session     *domain.LiveSession
	getErr      error
	setErr      error
	invalidated int
}

func (c *fakeSessionCache) GetActive(ctx context.Context) (*domain.LiveSession, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.session == nil {
		return nil, cache.ErrCacheMiss
	}
	return c.session, nil
}

func (c *fakeSessionCache) SetActive(ctx context.Context, session *domain.LiveSession, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.session = session
	return nil
}

func (c *fakeSessionCache) InvalidateActive(ctx context.Context) error {
	c.invalidated++
	c.session = nil
	return nil
}

func (c *fakeSessionCache) Close() error { return nil }

func TestStartSessionRequiresAdmin(t *testing.T) {
	svc := NewSessionService(&fakeSessionRepo{}, &fakeSessionCache{}, time.Minute, newFakeHub())

	_, err := svc.StartSession(context.Background(), &domain.User{ID: "u1"}, &domain.StartSessionRequest{Title: "t"})
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("err = %v, want ErrNotAdmin", err)
	}
}

func TestStartSessionRejectsSecondActive(t *testing.T) {
	repo := &fakeSessionRepo{active: &domain.LiveSession{ID: "s1", Status: domain.SessionStatusLive}}
	svc := NewSessionService(repo, &fakeSessionCache{}, time.Minute, newFakeHub())

	_, err := svc.StartSession(context.Background(), &domain.User{ID: "u1", IsAdmin: true}, &domain.StartSessionRequest{Title: "t"})
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("err = %v, want ErrSessionActive", err)
	}
}

func TestStartSessionCreatesCachesAndAnnounces(t *testing.T) {
	repo := &fakeSessionRepo{}
	sc := &fakeSessionCache{}
	h := newFakeHub()
	svc := NewSessionService(repo, sc, time.Minute, h)

	session, err := svc.StartSession(context.Background(), &domain.User{ID: "admin", IsAdmin: true}, &domain.StartSessionRequest{Title: "launch"})
	if err != nil {
		t.Fatal(err)
	}
	if session.BroadcasterID != "admin" || session.Status != domain.SessionStatusLive {
		t.Fatalf("session = %+v", session)
	}
	if sc.session == nil || sc.session.ID != session.ID {
		t.Fatal("session not cached")
	}

	b := h.lastBroadcast(t)
	started, ok := b.message.(*domain.LiveStartedMessage)
	if !ok || started.Session.ID != session.ID {
		t.Fatalf("announcement = %v, want live-started", b.message)
	}
}

func TestStartSessionSurvivesCacheFailure(t *testing.T) {
	repo := &fakeSessionRepo{}
	sc := &fakeSessionCache{setErr: errors.New("redis down")}
	svc := NewSessionService(repo, sc, time.Minute, newFakeHub())

	if _, err := svc.StartSession(context.Background(), &domain.User{ID: "admin", IsAdmin: true}, &domain.StartSessionRequest{Title: "t"}); err != nil {
		t.Fatalf("cache failure surfaced: %v", err)
	}
}

func TestEndSessionRequiresBroadcaster(t *testing.T) {
	repo := &fakeSessionRepo{active: &domain.LiveSession{ID: "s1", BroadcasterID: "admin"}}
	svc := NewSessionService(repo, &fakeSessionCache{}, time.Minute, newFakeHub())

	err := svc.EndSession(context.Background(), &domain.User{ID: "someone-else"}, "s1")
	if !errors.Is(err, ErrNotBroadcaster) {
		t.Fatalf("err = %v, want ErrNotBroadcaster", err)
	}
}

func TestEndSessionInvalidatesCacheAndAnnounces(t *testing.T) {
	repo := &fakeSessionRepo{active: &domain.LiveSession{ID: "s1", BroadcasterID: "admin"}}
	sc := &fakeSessionCache{session: repo.active}
	h := newFakeHub()
	svc := NewSessionService(repo, sc, time.Minute, h)

	if err := svc.EndSession(context.Background(), &domain.User{ID: "admin"}, "s1"); err != nil {
		t.Fatal(err)
	}
	if len(repo.ended) != 1 || repo.ended[0] != "s1" {
		t.Fatalf("ended = %v, want [s1]", repo.ended)
	}
	if sc.invalidated != 1 {
		t.Fatalf("cache invalidations = %d, want 1", sc.invalidated)
	}

	b := h.lastBroadcast(t)
	ended, ok := b.message.(*domain.LiveEndedMessage)
	if !ok || ended.SessionID != "s1" {
		t.Fatalf("announcement = %v, want live-ended for s1", b.message)
	}
}

func TestGetCurrentSessionPrefersCache(t *testing.T) {
	cached := &domain.LiveSession{ID: "cached"}
	repo := &fakeSessionRepo{active: &domain.LiveSession{ID: "db"}}
	svc := NewSessionService(repo, &fakeSessionCache{session: cached}, time.Minute, newFakeHub())

	got, err := svc.GetCurrentSession(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "cached" {
		t.Fatalf("session = %q, want cached", got.ID)
	}
}

func TestGetCurrentSessionFallsBackToDB(t *testing.T) {
	repo := &fakeSessionRepo{active: &domain.LiveSession{ID: "db"}}
	sc := &fakeSessionCache{}
	svc := NewSessionService(repo, sc, time.Minute, newFakeHub())

	got, err := svc.GetCurrentSession(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "db" {
		t.Fatalf("session = %q, want db", got.ID)
	}
	// The miss repopulates the cache.
	if sc.session == nil || sc.session.ID != "db" {
		t.Fatal("cache not repopulated after miss")
	}
}

func TestGetCurrentSessionNoneActive(t *testing.T) {
	svc := NewSessionService(&fakeSessionRepo{}, &fakeSessionCache{}, time.Minute, newFakeHub())

	got, err := svc.GetCurrentSession(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("session = %+v, want nil", got)
	}
}
