package service

import "sync"

// signalState tracks the broadcaster link per session and which viewers
// have already been announced to the broadcaster. The notified set is
// the dedup guard that makes client-side request-stream retries safe:
// a viewer is announced at most once per stream.
type signalState struct {
	mu           sync.Mutex
	broadcasters map[string]string              // sessionID -> broadcaster connID
	notified     map[string]map[string]struct{} // sessionID -> announced viewer connIDs
}

func newSignalState() *signalState {
	return &signalState{
		broadcasters: make(map[string]string),
		notified:     make(map[string]map[string]struct{}),
	}
}

// setBroadcaster records a connection as the session's broadcaster,
// overwriting any stale link, and returns the previous holder.
func (s *signalState) setBroadcaster(sessionID, connID string) (prev string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev = s.broadcasters[sessionID]
	s.broadcasters[sessionID] = connID
	return prev
}

// broadcaster returns the session's broadcaster connection, if any.
func (s *signalState) broadcaster(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	connID, ok := s.broadcasters[sessionID]
	return connID, ok
}

// releaseBroadcaster clears the broadcaster link if connID holds it and
// resets the session's notified set, so the next stream gets a fresh
// duplicate check (clear-on-stop policy).
func (s *signalState) releaseBroadcaster(sessionID, connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.broadcasters[sessionID] != connID {
		return false
	}
	delete(s.broadcasters, sessionID)
	delete(s.notified, sessionID)
	return true
}

// markNotified records that the broadcaster has been told about a
// viewer. It returns true only the first time per (session, viewer).
func (s *signalState) markNotified(sessionID, connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.notified[sessionID]
	if !ok {
		set = make(map[string]struct{})
		s.notified[sessionID] = set
	}
	if _, seen := set[connID]; seen {
		return false
	}
	set[connID] = struct{}{}
	return true
}

// isNotified reports whether a viewer has been announced for a session.
func (s *signalState) isNotified(sessionID, connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.notified[sessionID][connID]
	return ok
}

// forgetConn removes a connection from every notified set so a
// reconnecting viewer is treated as new.
func (s *signalState) forgetConn(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sessionID, set := range s.notified {
		delete(set, connID)
		if len(set) == 0 {
			delete(s.notified, sessionID)
		}
	}
}
