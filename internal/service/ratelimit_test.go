package service

import (
	"testing"
	"time"
)

func TestChatLimiterEnforcesWindowQuota(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := newChatLimiter(time.Minute, 10)
	l.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		if !l.allow("u1") {
			t.Fatalf("message %d rejected within quota", i+1)
		}
	}
	if l.allow("u1") {
		t.Fatal("11th message allowed within window")
	}
}

func TestChatLimiterResetsAfterWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := newChatLimiter(time.Minute, 10)
	l.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		l.allow("u1")
	}
	if l.allow("u1") {
		t.Fatal("over-quota message allowed")
	}

	// Rejections at the cap must not extend the window.
	now = now.Add(61 * time.Second)
	if !l.allow("u1") {
		t.Fatal("message rejected after window expiry")
	}
}

func TestChatLimiterIsolatesUsers(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := newChatLimiter(time.Minute, 2)
	l.now = func() time.Time { return now }

	l.allow("u1")
	l.allow("u1")
	if l.allow("u1") {
		t.Fatal("u1 over quota")
	}
	if !l.allow("u2") {
		t.Fatal("u2 blocked by u1's quota")
	}
}
