package service

import (
	"sync"
	"time"
)

type rateState struct {
	count       int
	windowReset time.Time
}

// chatLimiter enforces a fixed-window message quota per user. The
// window resets when it expires; at the cap, further messages are
// rejected without extending the window.
type chatLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	now    func() time.Time
	states map[string]*rateState
}

func newChatLimiter(window time.Duration, max int) *chatLimiter {
	return &chatLimiter{
		window: window,
		max:    max,
		now:    time.Now,
		states: make(map[string]*rateState),
	}
}

// allow reports whether a user may send another message, counting it if
// so.
func (l *chatLimiter) allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	st, ok := l.states[userID]
	if !ok {
		st = &rateState{windowReset: now.Add(l.window)}
		l.states[userID] = st
	}

	if now.After(st.windowReset) {
		st.count = 0
		st.windowReset = now.Add(l.window)
	}

	if st.count >= l.max {
		return false
	}
	st.count++
	return true
}
