package service

import "sync"

// viewerTracker is the authoritative in-memory record of which
// connections are watching which live session. It is rebuilt from zero
// on restart; the durable viewer_count column is only a mirror.
type viewerTracker struct {
	mu      sync.RWMutex
	viewers map[string]map[string]struct{} // sessionID -> connIDs
}

func newViewerTracker() *viewerTracker {
	return &viewerTracker{
		viewers: make(map[string]map[string]struct{}),
	}
}

// add registers a connection as a viewer of a session and returns the
// new count. Adding twice does not double-count.
func (t *viewerTracker) add(sessionID, connID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.viewers[sessionID]
	if !ok {
		set = make(map[string]struct{})
		t.viewers[sessionID] = set
	}
	set[connID] = struct{}{}
	return len(set)
}

// remove deregisters a connection from a session and returns the new
// count. Removing an absent connection is a no-op.
func (t *viewerTracker) remove(sessionID, connID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.viewers[sessionID]
	if !ok {
		return 0
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(t.viewers, sessionID)
		return 0
	}
	return len(set)
}

// removeAll removes a connection from every session it appears in and
// returns the new count per affected session.
func (t *viewerTracker) removeAll(connID string) map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	affected := make(map[string]int)
	for sessionID, set := range t.viewers {
		if _, ok := set[connID]; !ok {
			continue
		}
		delete(set, connID)
		affected[sessionID] = len(set)
		if len(set) == 0 {
			delete(t.viewers, sessionID)
		}
	}
	return affected
}

// count returns the current viewer count of a session.
func (t *viewerTracker) count(sessionID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.viewers[sessionID])
}

// viewerIDs returns the connection IDs currently watching a session.
func (t *viewerTracker) viewerIDs(sessionID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set := t.viewers[sessionID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// contains reports whether a connection is watching a session.
func (t *viewerTracker) contains(sessionID, connID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.viewers[sessionID][connID]
	return ok
}
